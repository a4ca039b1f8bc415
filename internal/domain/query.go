package domain

type SortField string

const (
	SortNone      SortField = ""
	SortName      SortField = "name"
	SortEmail     SortField = "email"
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortID        SortField = "id"
)

// Query describes a filtered, sorted page of active users.
type Query struct {
	Search string
	SortBy SortField
	Skip   int
	Limit  int
}

type Page struct {
	TotalCount int64  `json:"totalUsers"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Items      []User `json:"users"`
}

type DomainCount struct {
	Domain string `bson:"_id" json:"_id"`
	Count  int64  `bson:"count" json:"count"`
}
