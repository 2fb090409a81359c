package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/provider"
	"github.com/go-chi/chi/v5"
)

// WalletProvider reads balances and relays signed transactions on chain.
type WalletProvider interface {
	GetBalance(ctx context.Context, address string) (uint64, error)
	SendTransaction(ctx context.Context, signedTx string) (string, error)
}

// WalletHandler exposes the on-chain wallet. It is independent of points.
type WalletHandler struct {
	wallet WalletProvider
	logger *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallet WalletProvider, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{wallet: wallet, logger: logger}
}

// balanceResponse is the shape of GET /wallet/{address}/balance.
type balanceResponse struct {
	Address  string  `json:"address"`
	Lamports uint64  `json:"lamports"`
	SOL      float64 `json:"sol"`
}

// GetBalance handles GET /wallet/{address}/balance.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if err := provider.ValidateAddress(address); err != nil {
		RespondError(w, domain.ErrValidation(err.Error()))
		return
	}

	lamports, err := h.wallet.GetBalance(r.Context(), address)
	if err != nil {
		h.logger.Warn("wallet balance lookup failed", "address", address, "error", err)
		RespondError(w, domain.ErrInternal("wallet balance unavailable", err))
		return
	}

	RespondJSON(w, http.StatusOK, balanceResponse{
		Address:  address,
		Lamports: lamports,
		SOL:      float64(lamports) / provider.LamportsPerSOL,
	})
}

type transferRequest struct {
	Transaction string `json:"transaction"`
	Recipient   string `json:"recipient"`
	Amount      uint64 `json:"amount"`
}

// Transfer handles POST /wallet/transfer. The transaction is signed by the
// client's wallet; failures answer {"signature": null}.
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}
	if req.Transaction == "" {
		RespondError(w, domain.ErrValidation("transaction is required"))
		return
	}
	if req.Recipient != "" {
		if err := provider.ValidateAddress(req.Recipient); err != nil {
			RespondError(w, domain.ErrValidation("recipient: "+err.Error()))
			return
		}
	}

	sig, err := h.wallet.SendTransaction(r.Context(), req.Transaction)
	if err != nil {
		h.logger.Warn("wallet transfer failed", "recipient", req.Recipient, "amount", req.Amount, "error", err)
		RespondJSON(w, http.StatusOK, map[string]*string{"signature": nil})
		return
	}

	h.logger.Info("wallet transfer sent", "recipient", req.Recipient, "amount", req.Amount, "signature", sig)
	RespondJSON(w, http.StatusOK, map[string]*string{"signature": &sig})
}
