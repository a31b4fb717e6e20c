package picker

// Item is the contract rows must satisfy. ID is the stable identity
// used for preselection; DisplayName is what compact renderers show.
type Item interface {
	ID() string
	DisplayName() string
}

// TableItem extends Item with the two columns the default row layout
// shows. Items that do not implement it fall back to a single
// DisplayName column.
type TableItem interface {
	Item
	Code() string
	Description() string
}
