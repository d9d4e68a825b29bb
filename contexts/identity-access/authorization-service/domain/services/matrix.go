package services

import "carebridge/contexts/identity-access/authorization-service/domain/entities"

// Resource is a protected resource kind.
type Resource string

const (
	ResourceSubmission Resource = "submission"
	ResourceDispute    Resource = "dispute"
	ResourcePatient    Resource = "patient"
	ResourceJob        Resource = "job"
	ResourcePayment    Resource = "payment"
	ResourceAudit      Resource = "audit"
)

// Action is one of the four permission actions.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

// Outcome of a matrix lookup. The zero value is Deny so that any combination
// without an explicit entry fails closed.
type Outcome int

const (
	OutcomeDeny Outcome = iota
	OutcomeAllow
	OutcomeAllowOwn
)

type ruleKey struct {
	role     entities.Role
	resource Resource
	action   Action
}

// The permission matrix. Every (role, resource, action) combination the
// system exercises has an explicit entry; there is no wildcard matching and
// no rule inheritance, so the full permission surface is auditable by
// reading this table. Role hierarchy grants nothing implicitly here.
var matrix = map[ruleKey]Outcome{
	// Verification submissions. Moderators and above review; agencies and
	// caregivers may read and write only their own.
	{entities.RoleSuperAdmin, ResourceSubmission, ActionRead}:   OutcomeAllow,
	{entities.RoleAdmin, ResourceSubmission, ActionRead}:        OutcomeAllow,
	{entities.RoleModerator, ResourceSubmission, ActionRead}:    OutcomeAllow,
	{entities.RoleAgency, ResourceSubmission, ActionRead}:       OutcomeAllowOwn,
	{entities.RoleCaregiver, ResourceSubmission, ActionRead}:    OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourceSubmission, ActionWrite}:  OutcomeAllow,
	{entities.RoleAdmin, ResourceSubmission, ActionWrite}:       OutcomeAllow,
	{entities.RoleModerator, ResourceSubmission, ActionWrite}:   OutcomeAllow,
	{entities.RoleAgency, ResourceSubmission, ActionWrite}:      OutcomeAllowOwn,
	{entities.RoleCaregiver, ResourceSubmission, ActionWrite}:   OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourceSubmission, ActionManage}: OutcomeAllow,
	{entities.RoleAdmin, ResourceSubmission, ActionManage}:      OutcomeAllow,
	{entities.RoleSuperAdmin, ResourceSubmission, ActionDelete}: OutcomeAllow,

	// Disputes. Parties access their own; moderators and above see all;
	// resolution authority is checked per transition on top of this.
	{entities.RoleSuperAdmin, ResourceDispute, ActionRead}:   OutcomeAllow,
	{entities.RoleAdmin, ResourceDispute, ActionRead}:        OutcomeAllow,
	{entities.RoleModerator, ResourceDispute, ActionRead}:    OutcomeAllow,
	{entities.RoleAgency, ResourceDispute, ActionRead}:       OutcomeAllowOwn,
	{entities.RoleGuardian, ResourceDispute, ActionRead}:     OutcomeAllowOwn,
	{entities.RoleCaregiver, ResourceDispute, ActionRead}:    OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourceDispute, ActionWrite}:  OutcomeAllow,
	{entities.RoleAdmin, ResourceDispute, ActionWrite}:       OutcomeAllow,
	{entities.RoleModerator, ResourceDispute, ActionWrite}:   OutcomeAllow,
	{entities.RoleAgency, ResourceDispute, ActionWrite}:      OutcomeAllowOwn,
	{entities.RoleGuardian, ResourceDispute, ActionWrite}:    OutcomeAllowOwn,
	{entities.RoleCaregiver, ResourceDispute, ActionWrite}:   OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourceDispute, ActionManage}: OutcomeAllow,
	{entities.RoleAdmin, ResourceDispute, ActionManage}:      OutcomeAllow,
	{entities.RoleSuperAdmin, ResourceDispute, ActionDelete}: OutcomeAllow,

	// Patients. Guardians own their patients; caregivers and agencies see
	// patients linked to them.
	{entities.RoleSuperAdmin, ResourcePatient, ActionRead}:   OutcomeAllow,
	{entities.RoleAdmin, ResourcePatient, ActionRead}:        OutcomeAllow,
	{entities.RoleModerator, ResourcePatient, ActionRead}:    OutcomeAllow,
	{entities.RoleGuardian, ResourcePatient, ActionRead}:     OutcomeAllowOwn,
	{entities.RoleCaregiver, ResourcePatient, ActionRead}:    OutcomeAllowOwn,
	{entities.RoleAgency, ResourcePatient, ActionRead}:       OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourcePatient, ActionWrite}:  OutcomeAllow,
	{entities.RoleAdmin, ResourcePatient, ActionWrite}:       OutcomeAllow,
	{entities.RoleGuardian, ResourcePatient, ActionWrite}:    OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourcePatient, ActionDelete}: OutcomeAllow,

	// Jobs.
	{entities.RoleSuperAdmin, ResourceJob, ActionRead}:   OutcomeAllow,
	{entities.RoleAdmin, ResourceJob, ActionRead}:        OutcomeAllow,
	{entities.RoleModerator, ResourceJob, ActionRead}:    OutcomeAllow,
	{entities.RoleGuardian, ResourceJob, ActionRead}:     OutcomeAllowOwn,
	{entities.RoleCaregiver, ResourceJob, ActionRead}:    OutcomeAllowOwn,
	{entities.RoleAgency, ResourceJob, ActionRead}:       OutcomeAllowOwn,
	{entities.RoleShop, ResourceJob, ActionRead}:         OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourceJob, ActionWrite}:  OutcomeAllow,
	{entities.RoleAdmin, ResourceJob, ActionWrite}:       OutcomeAllow,
	{entities.RoleGuardian, ResourceJob, ActionWrite}:    OutcomeAllowOwn,
	{entities.RoleAgency, ResourceJob, ActionWrite}:      OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourceJob, ActionManage}: OutcomeAllow,
	{entities.RoleAdmin, ResourceJob, ActionManage}:      OutcomeAllow,

	// Payments.
	{entities.RoleSuperAdmin, ResourcePayment, ActionRead}:   OutcomeAllow,
	{entities.RoleAdmin, ResourcePayment, ActionRead}:        OutcomeAllow,
	{entities.RoleModerator, ResourcePayment, ActionRead}:    OutcomeAllow,
	{entities.RoleGuardian, ResourcePayment, ActionRead}:     OutcomeAllowOwn,
	{entities.RoleCaregiver, ResourcePayment, ActionRead}:    OutcomeAllowOwn,
	{entities.RoleShop, ResourcePayment, ActionRead}:         OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourcePayment, ActionWrite}:  OutcomeAllow,
	{entities.RoleAdmin, ResourcePayment, ActionWrite}:       OutcomeAllow,
	{entities.RoleGuardian, ResourcePayment, ActionWrite}:    OutcomeAllowOwn,
	{entities.RoleSuperAdmin, ResourcePayment, ActionManage}: OutcomeAllow,
	{entities.RoleAdmin, ResourcePayment, ActionManage}:      OutcomeAllow,

	// Audit log is restricted to second-tier authority.
	{entities.RoleSuperAdmin, ResourceAudit, ActionRead}: OutcomeAllow,
	{entities.RoleAdmin, ResourceAudit, ActionRead}:      OutcomeAllow,
}

// Lookup resolves a permission rule. Combinations without an explicit entry
// return OutcomeDeny.
func Lookup(role entities.Role, resource Resource, action Action) Outcome {
	return matrix[ruleKey{role, resource, action}]
}
