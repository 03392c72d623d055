package ledger

// arcadeABI is the read/write surface of the arcade contract. The
// contract itself is an external collaborator; only this interface is
// relied on.
const arcadeABI = `[
	{"type":"function","name":"createGame","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"startGame","inputs":[{"name":"gameId","type":"uint256"},{"name":"player","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"endGame","inputs":[{"name":"gameId","type":"uint256"},{"name":"player","type":"address"},{"name":"score","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"winnerWithdraw","inputs":[{"name":"gameId","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"mintTickets","inputs":[{"name":"recipient","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"getGame","inputs":[{"name":"gameId","type":"uint256"}],"outputs":[{"name":"endTime","type":"uint256"},{"name":"highScore","type":"uint256"},{"name":"leader","type":"address"},{"name":"pot","type":"uint256"},{"name":"potHistory","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"getLatestGameId","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"getTickets","inputs":[{"name":"player","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"event","name":"NewHighScore","inputs":[{"name":"gameId","type":"uint256","indexed":true},{"name":"player","type":"address","indexed":true},{"name":"score","type":"uint256","indexed":false}],"anonymous":false}
]`

const eventNewHighScore = "NewHighScore"
