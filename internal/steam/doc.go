// Package steam caches Steam product info for the app ids referenced by
// wiki articles, including the cloud save declarations and launch
// configurations used to resolve save locations.
package steam
