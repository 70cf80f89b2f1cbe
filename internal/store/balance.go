package store

import (
	"fmt"

	"github.com/hance08/tally/internal/model"
)

// nextBalances returns the balances of acc after applying the deltas. It fails
// with model.ErrAmountRange when available, held or their total would no
// longer fit in an Amount.
func nextBalances(acc *model.Account, availableDelta, heldDelta model.Amount) (model.Amount, model.Amount, error) {
	available, err := acc.Available.Add(availableDelta)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to update balances of account %d: available: %w", acc.Client, err)
	}

	held, err := acc.Held.Add(heldDelta)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to update balances of account %d: held: %w", acc.Client, err)
	}

	if _, err := available.Add(held); err != nil {
		return 0, 0, fmt.Errorf("failed to update balances of account %d: total: %w", acc.Client, err)
	}

	return available, held, nil
}
