package schema

// LibraryPurchaseTable represents the 'library.purchase' table
type LibraryPurchaseTable struct {
	Table         string
	ID            string
	UserID        string
	BookID        string
	SeriesID      string
	ExplorationID string
	CreatedAt     string
}

// LibraryPurchase is the schema definition for library.purchase
var LibraryPurchase = LibraryPurchaseTable{
	Table:         "library.purchase",
	ID:            "id",
	UserID:        "userid",
	BookID:        "bookid",
	SeriesID:      "seriesid",
	ExplorationID: "explorationid",
	CreatedAt:     "createdat",
}

func (t LibraryPurchaseTable) Columns() []string {
	return []string{t.ID, t.UserID, t.BookID, t.SeriesID, t.ExplorationID, t.CreatedAt}
}
