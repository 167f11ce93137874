// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities are free of GORM tags and infrastructure concerns
// 2. Persistence models carry the GORM annotations and table mappings
// 3. ToDomain / FromDomain convert between the two
// 4. Repositories read and write persistence models only
//
// Structure:
// - base.go: shared columns (id, timestamps, version, tenant)
// - identity.go: organizations, users, members, roles, invitations, profiles, devices, preferences
// - leave.go: leave types, balances, requests, holidays
// - payroll.go: payroll records, line items, notifications
// - document.go: stored documents, comments, profile documents
// - task.go, chat.go: tasks and direct messages
// - registry.go: the full model list
package models
