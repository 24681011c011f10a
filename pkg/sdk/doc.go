// Package textdex embeds the textdex search engine in a Go program.
//
// The client runs the same analysis, mapping and query machinery as the
// HTTP server, in-process, on a memory, sqlite or redis snapshot store.
//
//	client, _ := textdex.New(ctx, textdex.WithSQLite("data"))
//	defer client.Close()
//
//	client.Indices().Create(ctx, "articles", json.RawMessage(`{"mappings":{"post":{
//	    "properties":{"title":{"type":"string"}}}}}`))
//	client.Documents("articles", "post").Put(ctx, "1", json.RawMessage(`{"title":"Quick brown fox"}`))
//	client.Indices().Refresh(ctx, "articles")
//
//	res, _ := client.Search(ctx, "articles", json.RawMessage(`{"query":{"match":{"title":"fox"}}}`))
//	for _, h := range res.Hits {
//	    fmt.Println(h.ID, h.Score)
//	}
//
// Request bodies use the same JSON query DSL as the HTTP API.
package textdex
