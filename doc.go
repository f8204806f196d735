// Package sitesearch is an in-process full-text search engine for a site's
// pages, schemes, FAQs and other content records.
//
// # Low-level API
//
//	engine, _ := sitesearch.New([]sitesearch.Document{
//	    {ID: "nps", Title: "National Pension Scheme", Category: "scheme", Priority: 5},
//	})
//	hits := engine.Search("pension", sitesearch.Fuzzy(), sitesearch.Limit(10))
//	more := engine.Query("pensoin").Fuzzy().Category("scheme").Do()
//
// # Typed API with Go generics
//
//	type Article struct {
//	    Slug     string   `sitesearch:"id"`
//	    Headline string   `sitesearch:"title"`
//	    Section  string   `sitesearch:"category"`
//	    Tags     []string `sitesearch:"keywords"`
//	}
//
//	idx, _ := sitesearch.NewIndex(articles)
//	for _, h := range idx.Search("pension") {
//	    fmt.Println(h.Item.Headline, h.Score)
//	}
//
// Rebuild replaces the whole corpus atomically; concurrent searches see either
// the old or the new corpus, never a mix.
package sitesearch
