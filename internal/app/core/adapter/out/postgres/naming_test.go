package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
)

func TestNamingQualify(t *testing.T) {
	naming, err := NewNaming("ledger", "bank_")
	require.NoError(t, err)

	assert.Equal(t, `"ledger".bank_get_balance`, naming.Qualify(opGetBalance))
	assert.Equal(t, `"ledger".bank_transfer`, naming.Qualify(opTransfer))
	assert.Equal(t, "bank_get_account_history_view_name", naming.Name(opGetAccountHistoryViewName))
}

func TestNamingEmptyPrefix(t *testing.T) {
	naming, err := NewNaming("public", "")
	require.NoError(t, err)

	assert.Equal(t, `"public".insert_transaction`, naming.Qualify(opInsertTransaction))
}

func TestNamingQuotesSchema(t *testing.T) {
	naming, err := NewNaming(`Ledger"Prod`, "")
	require.NoError(t, err)

	assert.Equal(t, `"Ledger""Prod".transaction`, naming.Qualify(relTransaction))
}

func TestNewNamingValidation(t *testing.T) {
	_, err := NewNaming("", "bank_")
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	for _, prefix := range []string{"Bank_", "bank-", "1bank", "bank; drop"} {
		_, err := NewNaming("ledger", prefix)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, prefix)
	}
}
