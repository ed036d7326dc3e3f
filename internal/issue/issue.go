// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	SourceNotDetectedId Id = iota + 1
	SdkNotInstalledId
	SdkVersionTooOldId
	ManifestInvalidId
	DiscoveryFailedId
	PortAllocationFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
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

	sourceNotDetectedIssue = &Issue{
		id: SourceNotDetectedId,
		mdMsg: `
# No functions source detected!

The directory does not look like a functions project for any supported
runtime.

## Things you can try:
- For Node.js, make sure the directory contains a package.json:
~~~
$ ls package.json
~~~

- Point fnctl at the right directory:
~~~
$ fnctl discover /path/to/functions
~~~`,
	}

	sdkNotInstalledIssue = &Issue{
		id: SdkNotInstalledId,
		mdMsg: `
# Functions SDK not installed!

Your project depends on the functions SDK at runtime, but it is not
present in node_modules.

## Things you can try:
- Install the SDK:
~~~
$ npm install --save @fnctl/sdk
~~~

- If you already did, reinstall your dependencies:
~~~
$ rm -rf node_modules && npm install
~~~`,
	}

	sdkVersionTooOldIssue = &Issue{
		id: SdkVersionTooOldId,
		mdMsg: `
# Functions SDK too old!

The installed functions SDK predates self-describing discovery.
Discovery can still fall back to legacy static analysis, but validation
and deploy require the minimum supported version.

## Things you can try:
- Upgrade the SDK:
~~~
$ npm install --save @fnctl/sdk@latest
~~~

- Check what is currently installed:
~~~
$ npm ls @fnctl/sdk
~~~`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# Exported manifest is invalid!

A functions.yaml manifest exists in your source directory but does not
parse as a valid build document.

## Common issues:
- Endpoints with zero or more than one trigger
- An endpoint missing its entryPoint
- A specVersion this CLI does not understand

## Things you can try:
- Re-export the manifest by rebuilding your project
- Delete the stale file and let discovery probe your code instead:
~~~
$ rm functions.yaml
$ fnctl discover
~~~`,
	}

	discoveryFailedIssue = &Issue{
		id: DiscoveryFailedId,
		mdMsg: `
# Function discovery failed!

fnctl could not determine the functions declared in your source
directory.

## Common causes:
- The functions process crashed on startup (its stderr is printed above)
- An exception thrown at module load time
- A dependency missing from node_modules

## Things you can try:
- Run your entry module directly to reproduce the failure:
~~~
$ node -e 'require("./")'
~~~

- Run with verbose output for per-attempt details:
~~~
$ fnctl --verbose discover
~~~`,
	}

	portAllocationFailedIssue = &Issue{
		id: PortAllocationFailedId,
		mdMsg: `
# No open port found!

fnctl could not find a free loopback port for the functions process.

## Things you can try:
- Check for port exhaustion on your machine:
~~~
$ ss -tan | wc -l
~~~

- Close other local servers and retry`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the fnctl configuration file.

## Configuration file locations:
- Linux: ~/.config/fnctl/config.cue
- macOS: ~/Library/Application Support/fnctl/config.cue
- Windows: %APPDATA%\fnctl\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/fnctl/config.cue
~~~

## Example configuration:
~~~cue
node_binary: "node"
discovery: {
  liveness_window_secs: 5
  retry_interval_msecs: 500
}

ui: {
  verbose: false
}
~~~`,
	}

	issues = map[Id]*Issue{
		sourceNotDetectedIssue.Id():    sourceNotDetectedIssue,
		sdkNotInstalledIssue.Id():      sdkNotInstalledIssue,
		sdkVersionTooOldIssue.Id():     sdkVersionTooOldIssue,
		manifestInvalidIssue.Id():      manifestInvalidIssue,
		discoveryFailedIssue.Id():      discoveryFailedIssue,
		portAllocationFailedIssue.Id(): portAllocationFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return slices.Collect(maps.Values(issues))
}

func Get(id Id) *Issue {
	return issues[id]
}
