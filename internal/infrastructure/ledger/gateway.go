// Package ledger submits validated actions to the arcade contract and
// interprets receipts. Every write signs with the game master key and
// blocks until the transaction is mined; validation failures never
// reach this package.
package ledger

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

// Gateway is the contract surface the orchestrator depends on.
type Gateway interface {
	CreateGame(ctx context.Context) (string, error)
	StartGame(ctx context.Context, gameID int64, player string) (string, error)
	EndGame(ctx context.Context, gameID int64, player string, score int64) (txHash string, isHighScore bool, err error)
	WinnerWithdraw(ctx context.Context, gameID int64) (string, error)
	MintTickets(ctx context.Context, recipient string) (string, error)

	GetGame(ctx context.Context, gameID int64) (*game.LedgerGame, error)
	GetLatestGameID(ctx context.Context) (int64, error)
	GetTickets(ctx context.Context, player string) (int64, error)
}

// Client implements Gateway over an eth JSON-RPC endpoint.
type Client struct {
	cfg      *config.LedgerConfig
	eth      *ethclient.Client
	contract *bind.BoundContract
	parsed   abi.ABI
	opts     *bind.TransactOpts

	// txMu serializes writes so concurrent requests cannot race the
	// game master account nonce.
	txMu sync.Mutex
}

// NewClient dials the RPC endpoint and prepares the signing account.
func NewClient(cfg *config.LedgerConfig) (*Client, error) {
	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to dial ledger rpc")
	}

	parsed, err := abi.JSON(strings.NewReader(arcadeABI))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse contract abi")
	}

	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(cfg.GameMasterKey, "0x"))
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid game master key")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create transactor")
	}
	opts.GasLimit = cfg.GasLimit

	address := common.HexToAddress(cfg.ContractAddress)
	contract := bind.NewBoundContract(address, parsed, eth, eth, eth)

	return &Client{
		cfg:      cfg,
		eth:      eth,
		contract: contract,
		parsed:   parsed,
		opts:     opts,
	}, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Health checks RPC connectivity.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.eth.BlockNumber(ctx)
	return err
}

func (c *Client) CreateGame(ctx context.Context) (string, error) {
	receipt, err := c.submit(ctx, "createGame")
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

func (c *Client) StartGame(ctx context.Context, gameID int64, player string) (string, error) {
	receipt, err := c.submit(ctx, "startGame", big.NewInt(gameID), common.HexToAddress(player))
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

// EndGame submits the score and inspects the receipt for the
// NewHighScore event. An absent or undecodable event means "not a new
// high score"; an ambiguous receipt must never credit a win.
func (c *Client) EndGame(ctx context.Context, gameID int64, player string, score int64) (string, bool, error) {
	// The score parameter is a uint256; the ABI packer would wrap a
	// negative int64 to 2^256-1.
	if score < 0 {
		return "", false, apperrors.ErrScoreRejected
	}
	receipt, err := c.submit(ctx, "endGame", big.NewInt(gameID), common.HexToAddress(player), big.NewInt(score))
	if err != nil {
		return "", false, err
	}
	return receipt.TxHash.Hex(), c.receiptHasHighScore(receipt), nil
}

func (c *Client) WinnerWithdraw(ctx context.Context, gameID int64) (string, error) {
	receipt, err := c.submit(ctx, "winnerWithdraw", big.NewInt(gameID))
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

func (c *Client) MintTickets(ctx context.Context, recipient string) (string, error) {
	receipt, err := c.submit(ctx, "mintTickets", common.HexToAddress(recipient))
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

// submit sends a write transaction and blocks until it is mined or the
// receipt timeout elapses. The caller's request may time out while the
// transaction still lands; end-run retries stay safe because the
// contract compares against its current high score.
func (c *Client) submit(ctx context.Context, method string, args ...interface{}) (*types.Receipt, error) {
	c.txMu.Lock()
	tx, err := c.contract.Transact(c.opts, method, args...)
	c.txMu.Unlock()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerSubmission, err.Error())
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ReceiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.eth, tx)
	if err != nil {
		if waitCtx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.ErrLedgerTimeout, tx.Hash().Hex())
		}
		return nil, apperrors.Wrap(apperrors.ErrLedgerSubmission, err.Error())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, apperrors.Wrap(apperrors.ErrLedgerSubmission, "transaction reverted: "+tx.Hash().Hex())
	}
	return receipt, nil
}

func (c *Client) receiptHasHighScore(receipt *types.Receipt) bool {
	event, ok := c.parsed.Events[eventNewHighScore]
	if !ok {
		return false
	}
	contractAddr := common.HexToAddress(c.cfg.ContractAddress)
	for _, lg := range receipt.Logs {
		if lg.Address != contractAddr {
			continue
		}
		if len(lg.Topics) == 0 || lg.Topics[0] != event.ID {
			continue
		}
		return true
	}
	return false
}

func (c *Client) GetGame(ctx context.Context, gameID int64) (*game.LedgerGame, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "getGame", big.NewInt(gameID)); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerSubmission, err.Error())
	}
	if len(out) != 5 {
		return nil, apperrors.Wrap(apperrors.ErrLedgerSubmission, "unexpected getGame result shape")
	}

	endTime, ok1 := out[0].(*big.Int)
	highScore, ok2 := out[1].(*big.Int)
	leader, ok3 := out[2].(common.Address)
	pot, ok4 := out[3].(*big.Int)
	potHistory, ok5 := out[4].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return nil, apperrors.Wrap(apperrors.ErrLedgerSubmission, "unexpected getGame result types")
	}

	return &game.LedgerGame{
		ID:         gameID,
		EndTime:    time.Unix(endTime.Int64(), 0).UTC(),
		HighScore:  highScore.Int64(),
		Leader:     leader.Hex(),
		Pot:        pot,
		PotHistory: potHistory,
	}, nil
}

func (c *Client) GetLatestGameID(ctx context.Context) (int64, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "getLatestGameId"); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrLedgerSubmission, err.Error())
	}
	if len(out) != 1 {
		return 0, apperrors.Wrap(apperrors.ErrLedgerSubmission, "unexpected getLatestGameId result shape")
	}
	id, ok := out[0].(*big.Int)
	if !ok {
		return 0, apperrors.Wrap(apperrors.ErrLedgerSubmission, "unexpected getLatestGameId result type")
	}
	return id.Int64(), nil
}

func (c *Client) GetTickets(ctx context.Context, player string) (int64, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "getTickets", common.HexToAddress(player)); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrLedgerSubmission, err.Error())
	}
	if len(out) != 1 {
		return 0, apperrors.Wrap(apperrors.ErrLedgerSubmission, "unexpected getTickets result shape")
	}
	count, ok := out[0].(*big.Int)
	if !ok {
		return 0, apperrors.Wrap(apperrors.ErrLedgerSubmission, "unexpected getTickets result type")
	}
	return count.Int64(), nil
}
