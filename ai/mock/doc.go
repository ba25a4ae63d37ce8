// Package mock provides test doubles for the ai interfaces.
//
// The mocks generate deterministic embeddings and schema-complete
// synthetic metadata by default; tests inject failures or canned
// responses through the exported function fields.
package mock
