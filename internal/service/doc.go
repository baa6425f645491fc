// Package service provides the business layer over the repository contract.
//
// PersonService wraps a Repository[int64, Person] with entity validation and
// change events. Repositories never validate; callers that want raw CRUD use
// the repository directly, callers that want invariants enforced and events
// published go through the service.
//
// The EventBus is a fan-out of non-blocking channel sends: slow subscribers
// miss events rather than stalling mutations.
package service
