package rpc

import "github.com/hoangpq/Toshi/internal/index"

// Response is the wire envelope of the internal RPC transport.
type Response struct {
	Status  string           `json:"status,omitempty"`
	DocID   string           `json:"doc_id,omitempty"`
	Indexes []string         `json:"indexes,omitempty"`
	Hits    []index.Document `json:"hits,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func okResponse() Response {
	return Response{Status: "OK"}
}

func successResponse() Response {
	return Response{Status: "success"}
}

func docResponse(id string) Response {
	return Response{Status: "success", DocID: id}
}

func indexesResponse(names []string) Response {
	return Response{Status: "success", Indexes: names}
}

func hitsResponse(hits []index.Document) Response {
	return Response{Status: "success", Hits: hits}
}

func errorResponse(err string) Response {
	return Response{Status: "error", Error: err}
}
