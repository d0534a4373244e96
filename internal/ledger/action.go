package ledger

import "github.com/Veraticus/pocket-ledger/internal/model"

// ActionType names a state transition.
type ActionType string

// Known action types.
const (
	ActionAddRecord      ActionType = "ADD_RECORD"
	ActionAddAccount     ActionType = "ADD_ACCOUNT"
	ActionUpdateAccount  ActionType = "UPDATE_ACCOUNT"
	ActionAddCategory    ActionType = "ADD_CATEGORY"
	ActionAddBudget      ActionType = "ADD_BUDGET"
	ActionDeleteCategory ActionType = "DELETE_CATEGORY"
	ActionUpdateRecords  ActionType = "UPDATE_RECORDS"
)

// Action is a request to change the ledger state.
type Action interface {
	Type() ActionType
}

// AddRecord appends a record.
type AddRecord struct {
	Record model.Record
}

// AddAccount appends an account.
type AddAccount struct {
	Account model.Account
}

// UpdateAccount replaces the account whose ID matches Account.ID.
type UpdateAccount struct {
	Account model.Account
}

// AddCategory appends a category.
type AddCategory struct {
	Category model.Category
}

// AddBudget appends a budget.
type AddBudget struct {
	Budget model.Budget
}

// DeleteCategory removes a category along with every record and budget referencing it.
type DeleteCategory struct {
	CategoryID string
}

// UpdateRecords replaces the whole records list.
type UpdateRecords struct {
	Records []model.Record
}

func (AddRecord) Type() ActionType      { return ActionAddRecord }
func (AddAccount) Type() ActionType     { return ActionAddAccount }
func (UpdateAccount) Type() ActionType  { return ActionUpdateAccount }
func (AddCategory) Type() ActionType    { return ActionAddCategory }
func (AddBudget) Type() ActionType      { return ActionAddBudget }
func (DeleteCategory) Type() ActionType { return ActionDeleteCategory }
func (UpdateRecords) Type() ActionType  { return ActionUpdateRecords }
