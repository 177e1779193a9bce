// Package services implements the driving port interfaces.
//
// SearchService is the federated search pipeline. It owns no backend: every
// content source, cache, analytics sink and facet generator arrives through
// driven ports at construction time.
package services
