package http

type Status string

const (
	// StatusOK is used for health-check responses.
	StatusOK Status = "OK"

	// StatusSuccess indicates an operation completed successfully.
	StatusSuccess Status = "success"

	// StatusError indicates an operation failed.
	StatusError Status = "error"
)

// Response represents the standard API response format.
type Response struct {
	Status  Status   `json:"status,omitempty"`
	DocID   string   `json:"doc_id,omitempty"`
	Indexes []string `json:"indexes,omitempty"`
	Hits    []Hit    `json:"hits,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Hit is a single search result.
type Hit struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

func NewOKResponse() Response {
	return Response{Status: StatusOK}
}

func NewSuccessResponse() Response {
	return Response{Status: StatusSuccess}
}

func NewDocResponse(id string) Response {
	return Response{Status: StatusSuccess, DocID: id}
}

func NewIndexesResponse(names []string) Response {
	return Response{Status: StatusSuccess, Indexes: names}
}

func NewHitsResponse(hits []Hit) Response {
	return Response{Status: StatusSuccess, Hits: hits}
}

func NewErrorResponse(err string) Response {
	return Response{Status: StatusError, Error: err}
}
