package testutil

// Table file names as they appear in a game's data tree.
const (
	ItemTableName   = "t_item.tbl"
	ItemTableNameEN = "t_item_en.tbl"
	AttachTableName = "t_attach.tbl"
	DLCTableName    = "t_dlc.tbl"
)
