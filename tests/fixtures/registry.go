package fixtures

// PeopleRegistry is a person-style registry document with a preamble,
// labelled fields and a person without any URL.
const PeopleRegistry = `# People

Tracked individuals. This preamble is ignored.

## Alice Example
**Category:** Research
- **Blog:** https://alice.dev
- **RSS Feed:** https://alice.dev/feed.xml
- **LinkedIn:** https://www.linkedin.com/in/alice
- **Twitter/X:** @alice_writes

## Bob Builder
- Blog: [bob.dev](https://bob.dev),
- Newsletter: https://bob.substack.com

## Carol NoLinks
Just a note about Carol.
`

// CompanyRegistry is a company-style registry document. Docs Only has no
// usable URLs and is omitted by the company parser.
const CompanyRegistry = `# Companies

## Example AI
**Category:** Labs

**Primary sources:**
- https://example.ai/news
- https://example.ai/news/rss.xml
- https://docs.example.ai/changelog
- https://twitter.com/exampleai
- https://docs.example.ai/guide

Other notes with https://ignored.example.ai/blog outside the block.

## Docs Only
**Primary sources:**
- https://docs.docsonly.dev/reference
- https://x.com/docsonly
---

## Tooling Co
**Category:** Developer tools
**Primary sources:** https://tooling.dev/engineering
https://tooling.dev/release-notes
`
