package core

import "orchidlab/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Base               = domain.Base
	Plant              = domain.Plant
	User               = domain.User
	PollinationRecord  = domain.PollinationRecord
	SeedSource         = domain.SeedSource
	GerminationRecord  = domain.GerminationRecord
	Alert              = domain.Alert
	UserAlert          = domain.UserAlert
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityPlant       = domain.EntityPlant
	EntityUser        = domain.EntityUser
	EntityPollination = domain.EntityPollination
	EntitySeedSource  = domain.EntitySeedSource
	EntityGermination = domain.EntityGermination
	EntityAlert       = domain.EntityAlert
	EntityUserAlert   = domain.EntityUserAlert
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
)

const (
	RoleAdmin      = domain.RoleAdmin
	RoleTechnician = domain.RoleTechnician
	RoleViewer     = domain.RoleViewer
)
