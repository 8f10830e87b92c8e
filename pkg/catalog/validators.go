package catalog

type ListMediaItemsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"25" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Kind   *string `query:"kind" json:"kind,omitempty" validate:"omitempty,oneof=tv_show movie"`
}

type ListBooksQuery struct {
	Limit    int     `query:"limit" json:"limit,omitempty" default:"25" validate:"min=1,max=100"`
	Offset   int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	AuthorID *int    `query:"author_id" json:"author_id,omitempty"`
	SeriesID *int    `query:"series_id" json:"series_id,omitempty"`
	Kind     *string `query:"kind" json:"kind,omitempty" validate:"omitempty,oneof=audiobook ebook"`
}

type ListSeriesQuery struct {
	AuthorID *int `query:"author_id" json:"author_id,omitempty"`
}
