// Package schema holds the fixed per-variant record layouts of the sectioned
// .tbl format.
//
// Every payload is described as an ordered list of field widths. A width of
// CString means a null-terminated UTF-8 string; any other width is a literal
// byte count. Adding a game variant means adding a row to the registry, not a
// new branch in the codec.
//
//	Variant   item / item_q / item_e                dlc
//	-------   -----------------------------------   -------------
//	CS3       4 s 127 s s 8   (item_q: ... 20)      8 s s 80
//	CS4       4 s 150 s s 8   (item_q: ... 20)      20 s s 80
//	Reverie   4 s 141 s s     (item_e: 10, q: 22)   20 s s 80
//	TXe       4 s 62 s s 9    (item_q: ... 9)       10 s s 80
//
// The first two bytes of every item and dlc payload are the numeric ID. For
// items the third field is a flags string and the fourth the display name; for
// dlc packages the second field is the name and the fourth a 20-slot array of
// (item id, quantity) pairs.
package schema
