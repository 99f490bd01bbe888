// Package walletid resolves which wallet the process is acting for.
//
// The identity comes either from a statically configured address or from a
// wallet provider asked for its accounts on every call, so that a provider
// switching accounts is picked up by the next caller.
package walletid

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gabapcia/walletfeed/internal/pkg/logger"
)

// Status is the connection state of the wallet.
type Status struct {
	Connected bool
	Address   string // checksummed; empty when disconnected
}

// AccountSource lists the accounts exposed by a wallet provider.
type AccountSource interface {
	Accounts(ctx context.Context) ([]string, error)
}

// Service reports the current wallet identity.
type Service interface {
	Status(ctx context.Context) Status
}

type service struct {
	static common.Address
	source AccountSource
}

var _ Service = (*service)(nil)

// Option configures the identity sources.
type Option func(*service)

// WithStaticAddress pins the identity to address. Malformed addresses are ignored.
func WithStaticAddress(address string) Option {
	return func(s *service) {
		if common.IsHexAddress(address) {
			s.static = common.HexToAddress(address)
		}
	}
}

// WithAccountSource resolves the identity from a wallet provider.
func WithAccountSource(source AccountSource) Option {
	return func(s *service) {
		s.source = source
	}
}

// New builds the identity adapter. A static address takes precedence over
// the account source. Without either, the wallet is always disconnected.
func New(opts ...Option) *service {
	s := new(service)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status resolves the wallet identity. Provider failures are logged and
// reported as disconnected.
func (s *service) Status(ctx context.Context) Status {
	if s.static != (common.Address{}) {
		return Status{Connected: true, Address: s.static.Hex()}
	}

	if s.source == nil {
		return Status{}
	}

	accounts, err := s.source.Accounts(ctx)
	if err != nil {
		logger.Warn(ctx, "wallet provider unavailable", "error", err)
		return Status{}
	}

	for _, account := range accounts {
		if common.IsHexAddress(account) {
			return Status{Connected: true, Address: common.HexToAddress(account).Hex()}
		}
	}

	return Status{}
}
