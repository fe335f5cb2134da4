// Package models defines the core domain models for the finance assistant.
//
// # Models
//
//   - User: the single local account that owns all data
//   - Transaction: one signed money movement (positive income, negative expense)
//   - Budget: a spending ceiling for a category over a period
//   - Turn: one persisted message of an agent conversation
//   - ConversationInfo: a conversation id plus its last activity time
//   - SavingTip: seeded reference data served by the saver agent
//
// # Design Principles
//
// 1. **Append-only history**: turns are never mutated or deleted
// 2. **Exact money**: amounts are decimal values, never floats
// 3. **Avoid circular references**: rows reference owners by id, not pointers
package models
