// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	EntryNotFoundId Id = iota + 1
	ModuleResolutionFailedId
	ConfigLoadFailedId
	ManifestUnreadableId
	ManifestMismatchId
	DependencyCycleId
	ChunkRenderFailedId
	OutputWriteFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	entryNotFoundIssue = &Issue{
		id: EntryNotFoundId,
		mdMsg: `
# Entry point not found!

One of the configured entry points could not be resolved to a file.

## Things you can try:
- Check the entry request in webpack.cue:
~~~cue
entries: [
  {name: "main", request: "./src/index"},
]
~~~

- Verify the file exists relative to the configured context directory
- Remember that requests without an extension probe .js and .json`,
	}

	moduleResolutionFailedIssue = &Issue{
		id: ModuleResolutionFailedId,
		mdMsg: `
# Module resolution failed!

A dependency request could not be mapped to a file. The build continues;
the failing dependency is reported and everything independent of it still
compiles.

## Common causes:
- Typo in the import/require request
- Missing file, or an extension the resolver does not probe
- Request relative to the wrong directory

## Things you can try:
- Check the request spelling in the importing module
- Run with verbose output to see each resolution attempt:
~~~
$ webpack build --verbose
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load webpack.cue.

## Things you can try:
- Check the CUE syntax of webpack.cue
- Verify field names and value types against the schema
- Start from a minimal config:
~~~cue
context: "."
entries: [
  {name: "main", request: "./src/index"},
]
output: dir: "./dist"
~~~`,
	}

	manifestUnreadableIssue = &Issue{
		id: ManifestUnreadableId,
		mdMsg: `
# Unreadable DLL manifest!

A configured manifest file could not be read or decoded. This aborts the
whole build: without the manifest every module linking against the bundle
would fail anyway.

## Things you can try:
- Check the manifest path in webpack.cue
- Verify the file is valid JSON or TOML
- Re-run the build that produces the manifest

## Expected shape:
~~~json
{"name": "vendor", "content": {"./a.js": {"id": 1, "exports": ["a"]}}}
~~~`,
	}

	manifestMismatchIssue = &Issue{
		id: ManifestMismatchId,
		mdMsg: `
# DLL manifest mismatch!

A module links against a pre-built bundle, but the manifest has no record
for the bundle name or one of its requests. Matching is by exact string.

## Things you can try:
- Verify the reference name matches the manifest's "name" field exactly
- Verify every configured request appears under the manifest's "content"
- Rebuild the DLL bundle so the manifest is current`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Circular dependency detected!

Some modules import each other in a cycle. The build handles this and the
output is still correct; the warning exists because cycles often indicate
an accidental coupling.

## Things you can try:
- Extract the shared part of the cycle into its own module
- Replace one direction of the cycle with a dynamic import()`,
	}

	chunkRenderFailedIssue = &Issue{
		id: ChunkRenderFailedId,
		mdMsg: `
# Chunk generation failed!

A module in this chunk could not be rendered. The chunk is marked failed
and not emitted; sibling chunks are emitted normally.

## Things you can try:
- Check the reported module for a DLL manifest mismatch
- Fix the underlying error and rebuild; only the failed chunk changes`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# Failed to write output!

A rendered chunk could not be written to the output directory.

## Things you can try:
- Check that the output directory is writable
- Check free disk space
- Point output.dir at a different location:
~~~cue
output: dir: "./dist"
~~~`,
	}

	issues = map[Id]*Issue{
		entryNotFoundIssue.Id():           entryNotFoundIssue,
		moduleResolutionFailedIssue.Id():  moduleResolutionFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		manifestUnreadableIssue.Id():      manifestUnreadableIssue,
		manifestMismatchIssue.Id():        manifestMismatchIssue,
		dependencyCycleIssue.Id():         dependencyCycleIssue,
		chunkRenderFailedIssue.Id():       chunkRenderFailedIssue,
		outputWriteFailedIssue.Id():       outputWriteFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
