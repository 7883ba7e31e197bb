// Package profile turns a crawl result into an assessment of the site.
//
// # Building
//
// Build walks the crawled pages once and aggregates them into a
// model.SiteProfile: how many pages of each category were found, which
// of the core categories are missing, and a list of graded insights.
// Building is pure. It never touches the network, so a stored crawl
// result can be re-profiled at any time.
//
// # Insights
//
// Insights fall into three groups. Coverage insights report missing or
// notable page categories, such as a site without a contact page or a
// site with export signals. Content insights flag structural issues
// like an insecure scheme or thin content. Contact insights surface
// email addresses, phone numbers, and external domains extracted from
// the page text.
//
// # Usage
//
//	result, err := c.Crawl(ctx, req)
//	if err != nil {
//		return err
//	}
//	p := profile.Build(result)
//	for _, insight := range p.Insights {
//		fmt.Println(insight.Level, insight.Summary)
//	}
package profile
