package constants

import "fmt"

const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleCashier    = "cashier"
	RoleViewer     = "viewer"
)

// Template pesan error role
const (
	ErrActionForbidden = "❌ Role '%s' tidak boleh melakukan %s."
)

func RoleErrorAction(role string, action Action) string {
	return fmt.Sprintf(ErrActionForbidden, role, action)
}

// ==========================
// Actions
// ==========================
type Action string

const (
	ActionLedgerRead    Action = "ledger.read"
	ActionDebtBatch     Action = "debt.batch.create"
	ActionDebtCorrect   Action = "debt.correct"
	ActionReceiptWrite  Action = "receipt.write"
	ActionReceiptVoid   Action = "receipt.void"
	ActionReceiptDelete Action = "receipt.delete"
	ActionConceptWrite  Action = "concept.write"
	ActionSequenceAdmin Action = "sequence.admin"
)

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleAccountant,
		RoleCashier,
		RoleViewer,
	}

	StaffRoles = []string{
		RoleAdmin,
		RoleAccountant,
		RoleCashier,
	}

	AccountantAndAbove = []string{
		RoleAdmin,
		RoleAccountant,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)

var actionPolicy = map[Action][]string{
	ActionLedgerRead:    AllRoles,
	ActionReceiptWrite:  StaffRoles,
	ActionReceiptVoid:   AccountantAndAbove,
	ActionDebtBatch:     AccountantAndAbove,
	ActionConceptWrite:  AccountantAndAbove,
	ActionReceiptDelete: AdminOnly,
	ActionDebtCorrect:   AdminOnly,
	ActionSequenceAdmin: AdminOnly,
}

// IsAuthorized reports whether role may perform action. Unknown actions are denied.
func IsAuthorized(action Action, role string) bool {
	for _, r := range actionPolicy[action] {
		if r == role {
			return true
		}
	}
	return false
}
