package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/manifest/element"
	"github.com/c360/manifest/environment"
	"github.com/c360/manifest/errors"
	"github.com/c360/manifest/registry"
	"github.com/c360/manifest/resource"
)

func TestRegisterDocumentContextValidation(t *testing.T) {
	r := NewDocumentReader()
	doc := mustParse(t, `<manifest/>`)

	tests := []struct {
		name string
		ctx  *Context
		want error
	}{
		{"nil context", nil, errors.ErrNoReaderContext},
		{"nil registry", &Context{Environment: environment.New()}, errors.ErrNilRegistry},
		{"nil environment", &Context{Registry: registry.New()}, errors.ErrNilEnvironment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.RegisterDocument(doc, tt.ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errors.IsFatal(err))
		})
	}

	t.Run("nil document", func(t *testing.T) {
		ctx, _, _ := newTestContext(t)
		assert.NoError(t, r.RegisterDocument(nil, ctx))
	})
}

func TestComponentRegistration(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	doc := mustParse(t, `
		<manifest>
			<component kind="input" name="ingest, in, rx" domain="network" version="2" lazy="true">
				<property name="host" value="localhost"/>
				<property name="motd">hello</property>
			</component>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	def, ok := ctx.Registry.Definition("ingest")
	require.True(t, ok)
	assert.Equal(t, "input", def.Kind)
	assert.Equal(t, "network", def.Domain)
	assert.Equal(t, "2", def.Version)
	assert.True(t, def.Lazy)
	assert.Equal(t, map[string]string{"host": "localhost", "motd": "hello"}, def.Properties)

	// Remaining name tokens become aliases of the first.
	assert.Equal(t, "ingest", ctx.Registry.Canonical("in"))
	assert.Equal(t, "ingest", ctx.Registry.Canonical("rx"))

	require.Len(t, listener.components, 1)
	assert.Equal(t, "ingest", listener.components[0].Holder.Name)
	assert.ElementsMatch(t, []string{"in", "rx"}, listener.components[0].Holder.Aliases)
}

func TestComponentMissingKind(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	doc := mustParse(t, `<manifest><component name="orphan"/></manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

	problems := collector.Problems()
	require.Len(t, problems, 1)
	assert.ErrorIs(t, problems[0], errors.ErrEmptyAttribute)
	assert.Equal(t, 0, ctx.Registry.Count())
	assert.Empty(t, listener.components)
}

func TestComponentGeneratedName(t *testing.T) {
	ctx, listener, _ := newTestContext(t)
	doc := mustParse(t, `<manifest><component kind="processor"/></manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

	require.Len(t, listener.components, 1)
	name := listener.components[0].Holder.Name
	assert.Regexp(t, `^processor#[0-9a-f]{8}$`, name)
	assert.True(t, ctx.Registry.Contains(name))
}

func TestPlaceholderResolutionInAttributes(t *testing.T) {
	ctx, _, collector := newTestContext(t)
	ctx.Environment.AddSource(environment.NewMapSource("test", map[string]string{
		"app.domain": "telemetry",
		"db.host":    "db.internal",
	}))

	doc := mustParse(t, `
		<manifest>
			<component kind="store" name="db" domain="${app.domain}">
				<property name="host" value="${db.host}:${db.port:5432}"/>
			</component>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	def, ok := ctx.Registry.Definition("db")
	require.True(t, ok)
	assert.Equal(t, "telemetry", def.Domain)
	assert.Equal(t, "db.internal:5432", def.Properties["host"])
}

func TestProfileGatingRejectedRoot(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	ctx.Environment.SetActiveProfiles("dev")

	doc := mustParse(t, `
		<manifest profile="prod">
			<component kind="input" name="prod-only"/>
			<alias name="prod-only" alias="p"/>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

	// A rejected root leaves no trace: no mutations, no events, no problems.
	assert.Equal(t, 0, ctx.Registry.Count())
	assert.Equal(t, 0, listener.total())
	assert.Empty(t, collector.Problems())
	assert.NoError(t, collector.Err())
}

func TestProfileGating(t *testing.T) {
	tests := []struct {
		name    string
		active  []string
		profile string
		wantReg bool
	}{
		{"matching profile", []string{"prod"}, "prod", true},
		{"one of several matches", []string{"prod"}, "dev, prod", true},
		{"no match", []string{"dev"}, "prod", false},
		{"negation rejects active", []string{"dev"}, "!dev", false},
		{"negation accepts inactive", []string{"prod"}, "!dev", true},
		{"default profile", nil, "default", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, _ := newTestContext(t)
			ctx.Environment.SetActiveProfiles(tt.active...)

			doc := mustParse(t, `
				<manifest profile="`+tt.profile+`">
					<component kind="input" name="c"/>
				</manifest>`)

			require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
			assert.Equal(t, tt.wantReg, ctx.Registry.Contains("c"))
		})
	}
}

func TestProfileAttributeWithoutUsableProfiles(t *testing.T) {
	tests := []struct {
		name    string
		profile string
	}{
		{"only delimiters", ",;"},
		{"delimiters and whitespace", " ,; \t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, listener, collector := newTestContext(t)
			doc := mustParse(t, `
				<manifest profile="`+tt.profile+`">
					<component kind="input" name="gated"/>
				</manifest>`)

			require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

			// Profile text that tokenizes to nothing cannot be
			// evaluated: the condition is reported and the subtree is
			// not processed.
			problems := collector.Problems()
			require.Len(t, problems, 1)
			assert.ErrorIs(t, problems[0], errors.ErrProfileUnusable)
			assert.False(t, ctx.Registry.Contains("gated"))
			assert.Empty(t, listener.components)
			assert.Empty(t, listener.defaults)
		})
	}
}

func TestProfileScenarioProdDev(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	ctx.Environment.SetActiveProfiles("prod")

	doc := mustParse(t, `
		<manifest>
			<component kind="input" name="shared"/>
			<manifest profile="prod">
				<component kind="store" name="prod-db"/>
			</manifest>
			<manifest profile="dev">
				<component kind="store" name="dev-db"/>
				<alias name="dev-db" alias="db"/>
			</manifest>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	assert.True(t, ctx.Registry.Contains("shared"))
	assert.True(t, ctx.Registry.Contains("prod-db"))
	assert.False(t, ctx.Registry.Contains("dev-db"))
	assert.Empty(t, listener.aliases, "aliases in a skipped scope must not fire")
	assert.Len(t, listener.components, 2)
}

func TestNestedDefaultsInheritance(t *testing.T) {
	ctx, _, collector := newTestContext(t)
	doc := mustParse(t, `
		<manifest default-domain="network" default-lazy="true">
			<manifest default-domain="storage">
				<component kind="store" name="inner"/>
				<component kind="store" name="inner-explicit" domain="custom" lazy="false"/>
			</manifest>
			<manifest default-domain="default">
				<component kind="store" name="inherited"/>
			</manifest>
			<component kind="input" name="outer"/>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	inner, _ := ctx.Registry.Definition("inner")
	assert.Equal(t, "storage", inner.Domain, "nested scope overrides the default")
	assert.True(t, inner.Lazy, "unset defaults fall through to the outer scope")

	explicit, _ := ctx.Registry.Definition("inner-explicit")
	assert.Equal(t, "custom", explicit.Domain)
	assert.False(t, explicit.Lazy)

	inherited, _ := ctx.Registry.Definition("inherited")
	assert.Equal(t, "network", inherited.Domain, `the "default" sentinel inherits from the enclosing scope`)

	// The outer scope's defaults must survive the nested scopes: a
	// sibling after a nested manifest still sees the outer values.
	outer, _ := ctx.Registry.Definition("outer")
	assert.Equal(t, "network", outer.Domain)
	assert.True(t, outer.Lazy)
}

func TestAliasRegistration(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	doc := mustParse(t, `
		<manifest>
			<component kind="input" name="ingest"/>
			<alias name="ingest" alias="rx"/>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	assert.Equal(t, "ingest", ctx.Registry.Canonical("rx"))
	require.Len(t, listener.aliases, 1)
	assert.Equal(t, "ingest", listener.aliases[0].Name)
	assert.Equal(t, "rx", listener.aliases[0].Alias)
}

func TestAliasValidation(t *testing.T) {
	tests := []struct {
		name         string
		xml          string
		wantProblems int
	}{
		{"both empty", `<alias name="" alias=""/>`, 2},
		{"name empty", `<alias name="" alias="a"/>`, 1},
		{"alias empty", `<alias name="n" alias=" "/>`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, listener, collector := newTestContext(t)
			doc := mustParse(t, `<manifest>`+tt.xml+`</manifest>`)

			require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

			// Both attributes are validated independently; nothing
			// reaches the registry and no event fires.
			assert.Len(t, collector.Problems(), tt.wantProblems)
			assert.Equal(t, 0, ctx.Registry.Count())
			assert.Empty(t, listener.aliases)
		})
	}
}

func TestAliasConflictReported(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	doc := mustParse(t, `
		<manifest>
			<component kind="input" name="one"/>
			<component kind="input" name="two"/>
			<alias name="one" alias="x"/>
			<alias name="two" alias="x"/>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

	problems := collector.Problems()
	require.Len(t, problems, 1)
	assert.ErrorIs(t, problems[0], errors.ErrAliasConflict)
	assert.Len(t, listener.aliases, 1, "only the first binding fires an event")
	assert.Equal(t, "one", ctx.Registry.Canonical("x"))
}

func TestImportAbsolute(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	one := &fakeResource{location: "file:/manifests/one.xml", exists: true}
	two := &fakeResource{location: "file:/manifests/two.xml", exists: true}
	loader := &fakeLoader{byLocation: map[string][]resource.Resource{
		// The loader reports a duplicate; the event must dedupe it.
		"file:/manifests/one.xml": {one, two, one},
	}}
	ctx.Loader = loader

	doc := mustParse(t, `<manifest><import resource="file:/manifests/one.xml"/></manifest>`)
	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	assert.Equal(t, []string{"file:/manifests/one.xml"}, loader.definitionCalls)
	require.Len(t, listener.imports, 1)
	ev := listener.imports[0]
	assert.Equal(t, "file:/manifests/one.xml", ev.Location)
	require.Len(t, ev.Resources, 2)
	assert.Equal(t, "file:/manifests/one.xml", ev.Resources[0].Location())
	assert.Equal(t, "file:/manifests/two.xml", ev.Resources[1].Location())
}

func TestImportAbsoluteFailureIsProblem(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	loader := &fakeLoader{errByLocation: map[string]error{
		"file:/missing.xml": errors.ErrResourceNotFound,
	}}
	ctx.Loader = loader

	doc := mustParse(t, `
		<manifest>
			<import resource="file:/missing.xml"/>
			<component kind="input" name="after"/>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

	problems := collector.Problems()
	require.Len(t, problems, 1)
	assert.ErrorIs(t, problems[0], errors.ErrResourceNotFound)

	// A failed import is element-scoped: siblings still process, and
	// the import event fires with an empty resource set.
	assert.True(t, ctx.Registry.Contains("after"))
	require.Len(t, listener.imports, 1)
	assert.Empty(t, listener.imports[0].Resources)
}

func TestImportRelativeExisting(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	rel := &fakeResource{location: "file:/manifests/extra.xml", exists: true}
	current := &fakeResource{
		location:  "file:/manifests/base.xml",
		exists:    true,
		relatives: map[string]*fakeResource{"extra.xml": rel},
	}
	loader := &fakeLoader{}
	ctx.Loader = loader
	ctx.Resource = current

	doc := mustParse(t, `<manifest><import resource="extra.xml"/></manifest>`)
	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	// The existing relative resource is loaded directly; the derived
	// absolute fallback is never consulted.
	assert.Equal(t, []string{"file:/manifests/extra.xml"}, loader.fromResourceCalls)
	assert.Empty(t, loader.definitionCalls)
	require.Len(t, listener.imports, 1)
	require.Len(t, listener.imports[0].Resources, 1)
	assert.Equal(t, "file:/manifests/extra.xml", listener.imports[0].Resources[0].Location())
}

func TestImportRelativeFallback(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	missing := &fakeResource{location: "file:/manifests/extra.xml", exists: false}
	current := &fakeResource{
		location:  "file:/manifests/base.xml",
		exists:    true,
		relatives: map[string]*fakeResource{"extra.xml": missing},
	}
	derived := &fakeResource{location: "file:/manifests/extra.xml", exists: true}
	loader := &fakeLoader{byLocation: map[string][]resource.Resource{
		"file:/manifests/extra.xml": {derived},
	}}
	ctx.Loader = loader
	ctx.Resource = current

	doc := mustParse(t, `<manifest><import resource="extra.xml"/></manifest>`)
	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	assert.Empty(t, loader.fromResourceCalls)
	assert.Equal(t, []string{"file:/manifests/extra.xml"}, loader.definitionCalls)
	require.Len(t, listener.imports, 1)
	assert.Len(t, listener.imports[0].Resources, 1)
}

func TestImportRelativeWithoutCurrentResource(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	ctx.Loader = &fakeLoader{}

	doc := mustParse(t, `<manifest><import resource="extra.xml"/></manifest>`)
	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

	problems := collector.Problems()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "failed to resolve current resource location")
	require.Len(t, listener.imports, 1)
	assert.Empty(t, listener.imports[0].Resources)
}

func TestImportEmptyLocation(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	ctx.Loader = &fakeLoader{}

	doc := mustParse(t, `<manifest><import resource="  "/></manifest>`)
	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

	require.Len(t, collector.Problems(), 1)
	assert.Empty(t, listener.imports, "no event fires for an import that never resolved a location")
}

func TestImportPlaceholderFailureAbortsSiblings(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	ctx.Loader = &fakeLoader{}

	doc := mustParse(t, `
		<manifest>
			<component kind="input" name="before"/>
			<import resource="${missing.prop}/extra.xml"/>
			<component kind="input" name="never"/>
		</manifest>`)

	err := NewDocumentReader().RegisterDocument(doc, ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrPlaceholderUnresolved)

	// The failure propagates past the import element: siblings before
	// it were processed, siblings after it were not.
	assert.True(t, ctx.Registry.Contains("before"))
	assert.False(t, ctx.Registry.Contains("never"))
	assert.Empty(t, listener.imports)
	assert.Empty(t, collector.Problems())
}

func TestImportWithoutLoader(t *testing.T) {
	ctx, listener, collector := newTestContext(t)

	doc := mustParse(t, `<manifest><import resource="file:/one.xml"/></manifest>`)
	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

	require.Len(t, collector.Problems(), 1)
	assert.Contains(t, collector.Problems()[0].Message, "no loader available")
	require.Len(t, listener.imports, 1)
	assert.Empty(t, listener.imports[0].Resources)
}

func TestUnknownDefaultElementIgnored(t *testing.T) {
	ctx, listener, collector := newTestContext(t)
	doc := mustParse(t, `<manifest><description>ignored</description></manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	assert.Empty(t, collector.Problems())
	assert.Equal(t, 1, listener.total(), "only the root defaults event fires")
}

func TestCustomElementWithoutHandler(t *testing.T) {
	ctx, _, collector := newTestContext(t)
	doc := mustParse(t, `
		<manifest>
			<x:feature xmlns:x="urn:example:ext"/>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

	problems := collector.Problems()
	require.Len(t, problems, 1)
	assert.ErrorIs(t, problems[0], errors.ErrMalformedElement)
	assert.Contains(t, problems[0].Message, "urn:example:ext")
}

// customRecorder counts handler invocations and stamps decorated
// definitions.
type customRecorder struct {
	parsed    []string
	decorated int
}

func (h *customRecorder) ParseCustomElement(el *element.Element, d *Delegate) {
	h.parsed = append(h.parsed, el.Space+":"+el.Name)
}

func (h *customRecorder) DecorateDefinition(el *element.Element, holder *registry.Holder, d *Delegate) *registry.Holder {
	h.decorated++
	return holder
}

func TestCustomElementHandler(t *testing.T) {
	ctx, _, collector := newTestContext(t)
	handler := &customRecorder{}
	ctx.Custom = handler

	doc := mustParse(t, `
		<manifest>
			<x:feature xmlns:x="urn:example:ext"/>
			<component kind="input" name="c"/>
		</manifest>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	assert.Equal(t, []string{"urn:example:ext:feature"}, handler.parsed)
	assert.Equal(t, 1, handler.decorated, "registered components pass through decoration")
	assert.True(t, ctx.Registry.Contains("c"))
}

func TestNonDefaultNamespaceRootHandedOverWhole(t *testing.T) {
	ctx, _, collector := newTestContext(t)
	handler := &customRecorder{}
	ctx.Custom = handler

	doc := mustParse(t, `
		<x:bundle xmlns:x="urn:example:ext">
			<component kind="input" name="inside"/>
		</x:bundle>`)

	require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
	require.Empty(t, collector.Problems())

	// The whole foreign-namespace scope goes to the handler; the reader
	// does not descend into it.
	assert.Equal(t, []string{"urn:example:ext:bundle"}, handler.parsed)
	assert.False(t, ctx.Registry.Contains("inside"))
}

func TestProcessingHooks(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	r := NewDocumentReader()

	var order []string
	r.PreProcess = func(root *element.Element) { order = append(order, "pre:"+root.Name) }
	r.PostProcess = func(root *element.Element) { order = append(order, "post:"+root.Name) }

	doc := mustParse(t, `<manifest><manifest><component kind="input" name="c"/></manifest></manifest>`)
	require.NoError(t, r.RegisterDocument(doc, ctx))

	// Hooks wrap each scope, nesting inward.
	assert.Equal(t, []string{"pre:manifest", "pre:manifest", "post:manifest", "post:manifest"}, order)
}

func TestConfigSchemaValidation(t *testing.T) {
	schemas := NewSchemaRegistry()
	require.NoError(t, schemas.Register("store", []byte(`{
		"type": "object",
		"properties": {"bucket": {"type": "string"}},
		"required": ["bucket"]
	}`)))

	t.Run("valid payload", func(t *testing.T) {
		ctx, listener, collector := newTestContext(t)
		ctx.Schemas = schemas
		doc := mustParse(t, `
			<manifest>
				<component kind="store" name="s3">
					<config>{"bucket": "artifacts"}</config>
				</component>
			</manifest>`)

		require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))
		require.Empty(t, collector.Problems())
		require.Len(t, listener.components, 1)

		def, _ := ctx.Registry.Definition("s3")
		assert.JSONEq(t, `{"bucket": "artifacts"}`, string(def.RawConfig))
	})

	t.Run("rejected payload", func(t *testing.T) {
		ctx, listener, collector := newTestContext(t)
		ctx.Schemas = schemas
		doc := mustParse(t, `
			<manifest>
				<component kind="store" name="s3">
					<config>{"bucket": 7}</config>
				</component>
			</manifest>`)

		require.NoError(t, NewDocumentReader().RegisterDocument(doc, ctx))

		require.Len(t, collector.Problems(), 1)
		assert.Contains(t, collector.Problems()[0].Message, `config payload rejected for kind "store"`)
		assert.Equal(t, 0, ctx.Registry.Count())
		assert.Empty(t, listener.components)
	})
}

func TestCollectorErr(t *testing.T) {
	c := NewCollector()
	assert.NoError(t, c.Err())

	c.Report(Problem{Message: "first"})
	c.Report(Problem{Message: "second", Cause: errors.ErrEmptyAttribute})

	err := c.Err()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrEmptyAttribute)
	assert.Contains(t, err.Error(), "first")
}
