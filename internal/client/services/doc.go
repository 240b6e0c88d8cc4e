// Package services wraps the REST client with typed operations: a generic
// CRUD resource per entity, the lookup lists behind cascading selections,
// group permission management and super-admin user actions.
package services
