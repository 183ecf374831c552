package marc21

import (
	"fmt"
	"strings"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/xmlx"
)

// tagOffsets determine the tag of a heading field from the type of the resource.
// A heading has tag base + offset, where base is 100 for authorized headings,
// 400 for tracings, and 500 for related headings.
var tagOffsets = map[resource.Type]int{
	resource.TypeTemporal:              48,
	resource.TypeTopic:                 50,
	resource.TypeGeographic:            51,
	resource.TypeGenreForm:             55,
	resource.TypeLinkingTerm:           50,
	resource.TypeSplitNonPreferredTerm: 50,
	resource.TypeKnuteTerm:             50,
	resource.TypeCategory:              50,
	resource.TypeCollection:            50,
}

// componentCodes determine the subfield of a component within a compound heading.
var componentCodes = map[resource.Type]string{
	resource.TypeTopic:      "x",
	resource.TypeTemporal:   "y",
	resource.TypeGeographic: "z",
	resource.TypeGenreForm:  "v",
}

// subfield is a single subfield of a data field.
type subfield struct {
	Code  string
	Value string
}

// heading is a 1XX or 4XX field.
type heading struct {
	Tag       string
	Subfields []subfield
}

// key identifies the heading regardless of its tag.
func (h heading) key() string {
	var builder strings.Builder
	for _, sf := range h.Subfields {
		builder.WriteString(sf.Code)
		builder.WriteByte('\x1f')
		builder.WriteString(sf.Value)
		builder.WriteByte('\x1e')
	}
	return builder.String()
}

// record writes a single authority record.
type record struct {
	*exporter

	res *resource.Resource
	typ resource.Type
	uri string

	seen map[string]struct{} // keys of written headings
}

func headingTag(base int, t resource.Type) (string, bool) {
	offset, ok := tagOffsets[t]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%d", base+offset), true
}

// status returns the record status of the leader.
func (r *record) status() string {
	switch replacements := len(r.res.List(resource.FieldReplacedBy)); {
	case replacements > 1:
		return "s" // replaced by more than one resource
	case replacements == 1:
		return "x" // replaced by a single resource
	case r.res.Has(resource.FieldDeprecated):
		return "d" // deleted
	default:
		return "n" // new
	}
}

func (r *record) write() {
	r.w.Start("record", xmlx.Attr("xmlns", RecordNamespace), xmlx.Attr("type", "Authority"))
	defer r.w.End()

	created, modified := r.res.Times()

	r.w.Element("leader", "00000"+r.status()+"z  a2200000n  4500")
	r.controlField("001", r.res.ID())
	if r.opts.CreatedBy != "" {
		r.controlField("003", r.opts.CreatedBy)
	}
	r.controlField("005", modified.Format("20060102150405")+".0")
	r.controlField("008", r.field008(created.Format("060102")))

	if r.uri != "" {
		r.dataField("024", "7", " ", subfield{"a", r.uri}, subfield{"2", "uri"})
	}

	r.field040()

	for _, msc := range r.res.List(resource.FieldMSC) {
		r.dataField("065", " ", " ", subfield{"a", msc}, subfield{"2", "msc"})
	}

	for _, notation := range r.res.List(resource.FieldNotation) {
		r.dataField("083", "0", " ", subfield{"a", notation})
	}

	mappings := classifyMappings(r.res, r.opts.Siblings)
	for _, m := range mappings.classes {
		var subfields []subfield
		if m.Table != "" {
			subfields = append(subfields, subfield{"z", m.Table})
		}
		subfields = append(subfields, subfield{"a", m.Number}, subfield{"c", m.Relation}, subfield{"2", "23"})
		r.dataField("083", "0", " ", subfields...)
	}
	r.classMappings += len(mappings.classes)

	if r.typ == resource.TypeCompoundHeading {
		r.compoundHeadings()
	} else {
		r.headings()
	}

	if !r.res.Has(resource.FieldDeprecated) {
		r.relations()
	}

	for _, note := range r.res.List(resource.FieldEditorialNote) {
		r.dataField("680", " ", " ", subfield{"i", note})
	}
	for _, lang := range r.res.Keys(resource.FieldDefinition) {
		definition, _ := r.res.Text(resource.FieldDefinition, lang)
		r.dataField("680", " ", " ", subfield{"i", definition})
	}

	for _, m := range mappings.siblings {
		r.dataField("750", " ", "7", subfield{"0", m.ID}, subfield{"2", m.Vocabulary}, subfield{"4", m.Relation})
	}
	for _, m := range mappings.uris {
		r.dataField("750", " ", "4", subfield{"0", m.URI}, subfield{"4", m.Relation})
	}
}

// field008 returns the fixed length data elements.
func (r *record) field008(created string) string {
	kind := "a"       // 09: established heading
	mainEntry := "b"  // 14: not appropriate as main or added entry
	subjectUse := "a" // 15: appropriate as subject added entry

	switch r.typ {
	case resource.TypeLinkingTerm, resource.TypeSplitNonPreferredTerm:
		subjectUse = "b"
	case resource.TypeCollection:
		kind = "e" // node label
		subjectUse = "b"
	}

	return created + "|||" + kind + "nz|n" + mainEntry + subjectUse + "bn          |a|ana|||| d"
}

func (r *record) field040() {
	var subfields []subfield
	if r.opts.CreatedBy != "" {
		subfields = append(subfields, subfield{"a", r.opts.CreatedBy})
	}
	subfields = append(subfields, subfield{"b", r.language.Bibliographic})
	if r.opts.TranscribedBy != "" {
		subfields = append(subfields, subfield{"c", r.opts.TranscribedBy})
	}
	if r.opts.ModifiedBy != "" {
		subfields = append(subfields, subfield{"d", r.opts.ModifiedBy})
	}
	if r.opts.VocabularyCode != "" {
		subfields = append(subfields, subfield{"f", r.opts.VocabularyCode})
	}
	r.dataField("040", " ", " ", subfields...)
}

func (r *record) controlField(tag, value string) {
	r.w.Element("controlfield", value, xmlx.Attr("tag", tag))
}

func (r *record) dataField(tag, ind1, ind2 string, subfields ...subfield) {
	r.w.Start("datafield", xmlx.Attr("tag", tag), xmlx.Attr("ind1", ind1), xmlx.Attr("ind2", ind2))
	for _, sf := range subfields {
		r.w.Element("subfield", sf.Value, xmlx.Attr("code", sf.Code))
	}
	r.w.End()
}

// addHeading writes h unless a heading with the same subfields was written before.
func (r *record) addHeading(h heading) {
	key := h.key()
	if _, ok := r.seen[key]; ok {
		return
	}
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	r.seen[key] = struct{}{}

	r.dataField(h.Tag, " ", " ", h.Subfields...)
}

// languages returns the keys of f, the cataloging language first.
func (r *record) languages(res *resource.Resource, f resource.Field) []string {
	keys := res.Keys(f)
	ordered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == r.language.Alpha2 {
			ordered = append(ordered, k)
		}
	}
	for _, k := range keys {
		if k != r.language.Alpha2 {
			ordered = append(ordered, k)
		}
	}
	return ordered
}

func (r *record) extras(rank, lang string) []subfield {
	if !r.opts.IncludeExtras {
		return nil
	}
	return []subfield{{"9", "rank=" + rank}, {"9", "language=" + lang}}
}

// headings writes the authorized heading and tracings of a simple resource.
func (r *record) headings() {
	authorized, ok1 := headingTag(100, r.typ)
	tracing, ok4 := headingTag(400, r.typ)
	if !ok1 || !ok4 {
		r.st.LogWarn("no heading tag for type", "id", r.res.ID(), "type", r.typ)
		return
	}

	for _, lang := range r.languages(r.res, resource.FieldPrefLabel) {
		label, _ := r.res.Label(resource.FieldPrefLabel, lang)

		h := heading{Tag: tracing, Subfields: []subfield{{"a", label.Value}}}
		if lang == r.language.Alpha2 {
			h.Tag = authorized
		}
		h.Subfields = append(h.Subfields, r.extras("preferred", lang)...)
		r.addHeading(h)

		if lang == r.language.Alpha2 {
			r.acronyms(label, tracing)
		}
	}

	for _, lang := range r.languages(r.res, resource.FieldAltLabel) {
		for _, label := range r.res.LabelList(resource.FieldAltLabel, lang) {
			h := heading{Tag: tracing, Subfields: []subfield{{"a", label.Value}}}
			h.Subfields = append(h.Subfields, r.extras("alternative", lang)...)
			r.addHeading(h)

			if lang == r.language.Alpha2 {
				r.acronyms(label, tracing)
			}
		}
	}
}

// acronyms writes tracings for the acronym annotations of label.
func (r *record) acronyms(label resource.Label, tag string) {
	if label.HasAcronym != "" {
		// $g d: heading is an acronym for the authorized heading
		r.addHeading(heading{Tag: tag, Subfields: []subfield{{"a", label.HasAcronym}, {"g", "d"}}})
	}
	if label.AcronymFor != "" {
		r.addHeading(heading{Tag: tag, Subfields: []subfield{{"a", label.AcronymFor}}})
	}
}

// compoundHeadings writes the headings of a compound heading, assembled from its components.
// A language is only used when every component has a preferred label in it.
func (r *record) compoundHeadings() {
	ids := r.res.List(resource.FieldComponent)
	if len(ids) == 0 {
		r.st.LogWarn("compound heading without components", "id", r.res.ID())
		return
	}

	components := make([]*resource.Resource, len(ids))
	for i, id := range ids {
		component, ok := r.voc.Resources.Get(id)
		if !ok {
			r.st.LogWarn("component does not exist", "id", r.res.ID(), "component", id)
			return
		}
		components[i] = component
	}

	first := components[0]
	authorized, ok1 := headingTag(100, first.PrimaryType())
	tracing, ok4 := headingTag(400, first.PrimaryType())
	if !ok1 || !ok4 {
		r.st.LogWarn("no heading tag for type of first component", "id", r.res.ID(), "type", first.PrimaryType())
		return
	}

outer:
	for _, lang := range r.languages(first, resource.FieldPrefLabel) {
		h := heading{Tag: tracing}
		if lang == r.language.Alpha2 {
			h.Tag = authorized
		}

		for i, component := range components {
			label, ok := component.Label(resource.FieldPrefLabel, lang)
			if !ok {
				continue outer
			}

			code := "a"
			if i > 0 {
				if code, ok = componentCodes[component.PrimaryType()]; !ok {
					code = "x"
				}
			}
			h.Subfields = append(h.Subfields, subfield{code, label.Value})
		}

		h.Subfields = append(h.Subfields, r.extras("preferred", lang)...)
		r.addHeading(h)
	}
}

// relations writes the see also fields for broader, narrower and related resources.
func (r *record) relations() {
	broader := r.res.List(resource.FieldBroader)
	if r.opts.IncludeMemberships {
		broader = append(broader[:len(broader):len(broader)], r.res.List(resource.FieldMemberOf)...)
	}

	for _, id := range broader {
		r.relation(id, "broader", subfield{"w", "g"})
	}
	for _, id := range r.index.Narrower(r.res.ID()) {
		r.relation(id, "narrower", subfield{"w", "h"})
	}
	for _, id := range r.res.List(resource.FieldRelated) {
		r.relation(id, "related")
	}
}

// relation writes a see also field for the resource with the given id.
// Targets that cannot be represented are logged and skipped.
func (r *record) relation(id, kind string, extra ...subfield) {
	target, ok := r.voc.Resources.Get(id)
	if !ok {
		r.st.LogWarn("relation target does not exist", "id", r.res.ID(), "relation", kind, "target", id)
		return
	}
	t := target.PrimaryType()
	if t == resource.TypeCollection && kind != "related" {
		// only related links may point at a node label
		r.st.LogWarn("cannot link to a collection", "id", r.res.ID(), "relation", kind, "target", id)
		return
	}
	fieldTag, ok := headingTag(500, t)
	if !ok {
		r.st.LogWarn("relation target has an unknown type", "id", r.res.ID(), "relation", kind, "target", id, "type", t)
		return
	}
	label, ok := target.Label(resource.FieldPrefLabel, r.language.Alpha2)
	if !ok {
		r.st.LogWarn("relation target has no label in the cataloging language", "id", r.res.ID(), "relation", kind, "target", id)
		return
	}

	subfields := []subfield{{"a", label.Value}}
	subfields = append(subfields, extra...)
	subfields = append(subfields, subfield{"0", r.globalControlNumber(id)})
	r.dataField(fieldTag, " ", " ", subfields...)
}
