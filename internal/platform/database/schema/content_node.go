package schema

// ContentNodeTable represents one 'content.*' node table.
// Every node table shares this column layout; only the table name and the
// parent column differ.
type ContentNodeTable struct {
	Table       string
	ID          string
	AuthorID    string
	ParentID    string // empty when the table has no parent column
	Ordinal     string
	Title       string
	Description string
	IsPublic    string
	Price       string
	PublishDate string
	Attributes  string
	CreatedAt   string
	UpdatedAt   string
}

func newContentNodeTable(table, parentColumn string) ContentNodeTable {
	return ContentNodeTable{
		Table:       table,
		ID:          "id",
		AuthorID:    "authorid",
		ParentID:    parentColumn,
		Ordinal:     "ordinal",
		Title:       "title",
		Description: "description",
		IsPublic:    "ispublic",
		Price:       "price",
		PublishDate: "publishdate",
		Attributes:  "attributes",
		CreatedAt:   "createdat",
		UpdatedAt:   "updatedat",
	}
}

// Library tree
var (
	ContentSeries  = newContentNodeTable("content.series", "")
	ContentBook    = newContentNodeTable("content.book", "seriesid")
	ContentChapter = newContentNodeTable("content.chapter", "bookid")
	ContentScene   = newContentNodeTable("content.scene", "chapterid")
)

// World tree
var (
	ContentWorld           = newContentNodeTable("content.world", "")
	ContentTimeline        = newContentNodeTable("content.timeline", "worldid")
	ContentEvent           = newContentNodeTable("content.event", "timelineid")
	ContentTimelineEvent   = newContentNodeTable("content.timelineevent", "timelineid")
	ContentLocation        = newContentNodeTable("content.location", "worldid")
	ContentPopulationGroup = newContentNodeTable("content.populationgroup", "worldid")
	ContentCharacter       = newContentNodeTable("content.character", "worldid")
)

// Exploration tree
var (
	ContentExploration      = newContentNodeTable("content.exploration", "")
	ContentExplorationScene = newContentNodeTable("content.explorationscene", "explorationid")
)

// Columns returns the selectable columns in scan order. The parent column is
// included only when the table has one.
func (t ContentNodeTable) Columns() []string {
	columns := []string{t.ID, t.AuthorID}
	if t.ParentID != "" {
		columns = append(columns, t.ParentID)
	}
	return append(columns,
		t.Ordinal, t.Title, t.Description, t.IsPublic, t.Price, t.PublishDate,
		t.Attributes, t.CreatedAt, t.UpdatedAt,
	)
}

// HasParent reports whether rows of this table reference a parent row.
func (t ContentNodeTable) HasParent() bool {
	return t.ParentID != ""
}
