package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sultanops/coinwallet/internal/infra/metrics"
	"github.com/sultanops/coinwallet/internal/infra/pgutils"
	"github.com/sultanops/coinwallet/internal/repos/catalog"
	"github.com/sultanops/coinwallet/internal/repos/ledger"
	"github.com/sultanops/coinwallet/internal/services/pricing"
)

var serviceKinds = map[string]string{
	"web": pricing.KeyPriceWeb,
	"apk": pricing.KeyPriceAPK,
	"bot": pricing.KeyPriceBot,
}

// ServiceKinds lists orderable custom-work kinds.
func ServiceKinds() []string {
	return []string{"web", "apk", "bot"}
}

// ServicePrice reads the current price of a custom-work kind.
func (s *Service) ServicePrice(ctx context.Context, kind string) (int64, error) {
	key, ok := serviceKinds[kind]
	if !ok {
		return 0, ErrUnknownService
	}

	return s.prices.Int64(ctx, key), nil
}

// OrderService charges for a custom work order and forwards the task
// description to the admin after the debit committed.
func (s *Service) OrderService(ctx context.Context, id int64, kind, description string) (int64, error) {
	price, err := s.ServicePrice(ctx, kind)
	if err != nil {
		return 0, err
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.accounts.LockAndGet(tx, id)
		if err != nil {
			return err
		}

		return s.debit(tx, id, price, ledger.CauseServiceOrder, kind)
	})
	if err != nil {
		return 0, fmt.Errorf("order %s for %d: %w", kind, id, err)
	}

	metrics.LedgerMutations.WithLabelValues(string(ledger.CauseServiceOrder)).Inc()

	s.notifier.NotifyAdmin(fmt.Sprintf("New %s order from account %d (%d coins):\n%s",
		kind, id, price, description))

	return price, nil
}

// Projects lists the ready-made catalog.
func (s *Service) Projects(ctx context.Context) ([]catalog.Project, error) {
	return s.catalog.List(ctx)
}

// AddProject puts a new item on sale and returns its id.
func (s *Service) AddProject(ctx context.Context, name string, price int64, payload string) (int64, error) {
	return s.catalog.Add(ctx, name, price, payload)
}

// DeleteProject takes an item off sale. Past purchases keep their ledger
// entries.
func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	return s.catalog.Delete(ctx, id)
}

// ProjectPurchase is the outcome of buying a catalog item. Charged is the
// price after the tier discount; Payload is what gets delivered.
type ProjectPurchase struct {
	Project *catalog.Project
	Charged int64
}

// PurchaseProject charges the catalog price with the buyer's tier
// discount applied and returns the deliverable. A 100% discount tier
// takes the item for free without touching the ledger.
func (s *Service) PurchaseProject(ctx context.Context, id, projectID int64) (*ProjectPurchase, error) {
	proj, err := s.catalog.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var charged int64

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		acct, err := s.accounts.LockAndGet(tx, id)
		if err != nil {
			return err
		}

		discount := EffectiveTier(acct, s.now()).DiscountPct
		charged = proj.Price - proj.Price*discount/100

		if charged == 0 {
			return nil
		}

		return s.debit(tx, id, charged, ledger.CauseProjectPurchase, proj.Name)
	})
	if err != nil {
		return nil, fmt.Errorf("purchase project %d for %d: %w", projectID, id, err)
	}

	if charged > 0 {
		metrics.LedgerMutations.WithLabelValues(string(ledger.CauseProjectPurchase)).Inc()
	}

	return &ProjectPurchase{Project: proj, Charged: charged}, nil
}
