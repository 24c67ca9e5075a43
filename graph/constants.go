package graph

const (
	// Edge rendering style consumed by the front end.
	edgeStyle = "smoothstep"

	// Collection row.
	collectionStartX = 100.0
	collectionY      = 50.0
	collectionPitch  = 600.0

	// Query row, centered under the collection.
	queryPitch   = 150.0
	querySpacing = 400.0

	// Tag column under each query. A tag node's vertical extent is estimated
	// from its label length: ceil(len/tagCharsPerLine) lines of tagLineHeight.
	tagPitch        = 150.0
	tagCharsPerLine = 28
	tagLineHeight   = 18.0
	tagGap          = 40.0

	// Curated-highlight nodes sit beside their tag node.
	highlightOffsetX = 260.0

	// Uncategorized node sits left of the collection, same row.
	uncategorizedOffsetX = -500.0

	// Aggregate nodes anchor below the tag columns.
	aggregateOffsetY         = 150.0
	aggregateRelevantOffsetX = 300.0
)
