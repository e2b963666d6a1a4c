// Package core provides the business logic for user administration.
//
// This package holds all domain logic independent of any UI, transport or
// persistence technology. It is used by the HTTP handlers, the userctl CLI
// and tests without modification; storage is injected through the ports in
// store.go.
//
// # Architecture
//
//   - Service: the entry point for user, role, invitation and activity
//     operations. Every mutating user operation records exactly one
//     activity log entry.
//   - Bulk import: [ParseUsers] turns CSV text into candidate users and
//     [ImportAll] processes them strictly in order, producing an
//     [ImportResult] that accounts for every row.
//   - Export: [WriteUsersCSV] and [WriteTemplateCSV] write the same CSV
//     dialect the importer reads.
//   - Permissions: the built-in permission catalogue and system roles.
//
// # Bulk Import
//
// The flow of [Service.ImportCSV] is:
//
//  1. Acquire an [ImportLimiter] slot so batches never overlap
//  2. Strip a UTF-8 BOM and reject input that is not valid UTF-8
//  3. Tokenize with encoding/csv (quoted fields are supported)
//  4. Drop rows whose email is blank; remaining rows are numbered from 1
//  5. For each row: check required fields, look for an existing account,
//     then create it through [Service.CreateUser]
//
// Per-row failures are data, reported in [ImportResult.Errors]. Only an
// unreadable input ([ErrInvalidInput]) or a cancelled context fails the
// call itself.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code prefix for support reference:
//
//   - USR: user and role lookups, duplicates
//   - IMP: bulk import input and throttling
//   - DB: database connectivity and constraints
//   - VAL: payload validation
//   - RATE: request throttling
package core
