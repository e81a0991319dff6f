package manifest

// Canonical placeholders. See https://www.pcgamingwiki.com/wiki/Template:Path
// for where most of these originate on the wiki side.
const (
	PlaceholderRoot            = "<root>"
	PlaceholderGame            = "<game>"
	PlaceholderBase            = "<base>"
	PlaceholderHome            = "<home>"
	PlaceholderStoreUserID     = "<storeUserId>"
	PlaceholderOSUserName      = "<osUserName>"
	PlaceholderWinAppData      = "<winAppData>"
	PlaceholderWinLocalAppData = "<winLocalAppData>"
	PlaceholderWinDocuments    = "<winDocuments>"
	PlaceholderWinPublic       = "<winPublic>"
	PlaceholderWinProgramData  = "<winProgramData>"
	PlaceholderWinDir          = "<winDir>"
	PlaceholderXDGData         = "<xdgData>"
	PlaceholderXDGConfig       = "<xdgConfig>"
)

// Placeholders lists every canonical placeholder token.
var Placeholders = []string{
	PlaceholderRoot,
	PlaceholderGame,
	PlaceholderBase,
	PlaceholderHome,
	PlaceholderStoreUserID,
	PlaceholderOSUserName,
	PlaceholderWinAppData,
	PlaceholderWinLocalAppData,
	PlaceholderWinDocuments,
	PlaceholderWinPublic,
	PlaceholderWinProgramData,
	PlaceholderWinDir,
	PlaceholderXDGData,
	PlaceholderXDGConfig,
}
