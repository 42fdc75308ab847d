// Package autolink recognizes shorthand issue and pull request
// references (#123, JIRA-456, GH-789) in free-form text such as commit
// messages and branch names, and rewrites them into rich links.
//
// The pipeline has four stages:
//
//  1. Source aggregation: assemble the ordered reference-definition
//     groups that apply for a repository remote (connected integrations,
//     the remote's hosting provider, user-configured definitions).
//  2. Extraction: scan text or a branch name against those groups.
//  3. Enrichment (optional): concurrently resolve each reference to live
//     issue/PR state through the owning integration.
//  4. Rendering: rewrite the original text into plaintext, Markdown or
//     HTML, with deduplicated footnotes for enriched references.
//
// Engine is the entry point tying the stages together.
package autolink
