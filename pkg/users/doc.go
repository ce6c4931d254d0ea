// Package users implements the user resource: the record and form types,
// the API service, and the reactive Store that backs the user list.
package users
