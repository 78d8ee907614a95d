package domain

type StepStatus string

const (
	StepInProgress StepStatus = "in_progress"
	StepDone       StepStatus = "done"
)

// StepResult is empty while a step is open.
type StepResult string

const (
	ResultNone     StepResult = ""
	ResultApproved StepResult = "approved"
	ResultRejected StepResult = "rejected"
)

type Role string

const (
	RoleTechnologist        Role = "technologist"
	RoleOrderManager        Role = "order_manager"
	RoleHeadOrderDepartment Role = "head_order_department"
)

// ValidRoles is the canonical set of accepted role strings.
var ValidRoles = map[string]bool{
	"technologist":          true,
	"order_manager":         true,
	"head_order_department": true,
}

// successors drives default routing: who an approval hands off to when
// no rework override applies. A role absent from the table is the final
// approver.
var successors = map[Role]Role{
	RoleTechnologist:        RoleHeadOrderDepartment,
	RoleHeadOrderDepartment: RoleOrderManager,
}

// DefaultSuccessor returns the role a normal approval hands off to.
// ok is false for the final approver in the chain.
func (r Role) DefaultSuccessor() (Role, bool) {
	next, ok := successors[r]
	return next, ok
}

// DisplayName returns the human-readable role label.
func (r Role) DisplayName() string {
	switch r {
	case RoleTechnologist:
		return "Technologist"
	case RoleOrderManager:
		return "Order Manager"
	case RoleHeadOrderDepartment:
		return "Head of Order Department"
	default:
		return string(r)
	}
}
