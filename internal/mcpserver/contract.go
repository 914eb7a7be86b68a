package mcpserver

// DialectContract describes the post body dialect and the post file format
// that LLM consumers should follow when drafting posts.
const DialectContract = `# O.C.T.A.V.I.O. Post Format Contract

Posts are UTF-8 files ending in ` + "`.md`" + `: YAML frontmatter followed by a body in a
small line-oriented Markdown dialect. Anything outside the dialect renders as a plain
paragraph.

## Frontmatter

` + "```" + `yaml
---
title: "Eight Minds Are Better Than One"   # REQUIRED
date: "2025-02-03"                         # REQUIRED, YYYY-MM-DD, quoted
category: "AI"                             # OPTIONAL
slug: "eight-minds"                        # OPTIONAL, default: slugified title
excerpt: "..."                             # OPTIONAL, default: first paragraph
read_time: "5 min read"                    # OPTIONAL, default: words / 225
id: "..."                                  # OPTIONAL, default: derived from slug
---
` + "```" + `

## Body dialect

Each line is trimmed and classified in this order:

1. A line starting with three backticks opens a code block; the text after the
   backticks is the language (default ` + "`text`" + `). The next such line closes it.
   Lines inside are kept verbatim.
2. ` + "`## `" + ` starts a level-2 heading, ` + "`### `" + ` a level-3 heading. Heading text is not
   formatted.
3. ` + "`- item`" + ` or ` + "`1. item`" + ` is a list item. Consecutive items form one list; blank
   lines between items do not end the list.
4. A blank line is ignored.
5. Anything else is a paragraph of exactly one line.

Inside paragraphs and list items: ` + "`**bold**`" + `, ` + "`*italic*`" + ` and
` + "`` `code` ``" + `. Markers do not nest. Bold is resolved first, then italic, then code,
and text already inside a span is kept literally: ` + "`**use `npm` now**`" + ` renders as bold
text with the backticks visible. Close one span before opening another. There are no links,
images, quotes, tables or level-1 headings.

## Example

` + "```" + `markdown
---
title: "Giving Tools to a Language Model"
date: "2025-02-04"
category: "AI"
---

Greetings, humans! Today we talk about **tools**.

## How it works

- The model asks for a *tool call*
- The host runs ` + "`search_posts`" + `

` + "```go" + `
fmt.Println("hi")
` + "```" + `
` + "```" + `
`
