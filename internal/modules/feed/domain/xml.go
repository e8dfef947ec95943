package domain

import "encoding/xml"

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// UnmarshalXML decodes the document, then rewrites the names of kept
// elements and attributes to the prefixes they were written with. The
// encoder emits a name with an empty Space verbatim, so namespace
// declarations and prefixed names come back out exactly as read.
func (f *Feed) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain Feed
	var p plain
	if err := d.DecodeElement(&p, &start); err != nil {
		return err
	}
	*f = Feed(p)

	scope := prefixScope{}.with(f.Attrs)
	f.Attrs = scope.attrs(f.Attrs)
	if f.Channel != nil {
		f.Channel.qualify(scope)
	}
	return nil
}

// UnmarshalXML decodes channel children by local name. Namespaced children
// (atom:link and friends) never land in the RSS fields; they are kept as Extra.
func (c *Channel) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	c.Attrs = copyAttrs(start.Attr)
	return decodeChildren(d, func(el xml.StartElement) error {
		if el.Name.Space != "" {
			return decodeExtra(d, el, &c.Extra)
		}

		switch el.Name.Local {
		case "title":
			return d.DecodeElement(&c.Title, &el)
		case "link":
			return d.DecodeElement(&c.Link, &el)
		case "description":
			return d.DecodeElement(&c.Description, &el)
		case "lastBuildDate":
			return d.DecodeElement(&c.LastBuildDate, &el)
		case "item":
			var item Item
			if err := d.DecodeElement(&item, &el); err != nil {
				return err
			}
			c.Items = append(c.Items, item)
			return nil
		default:
			return decodeExtra(d, el, &c.Extra)
		}
	})
}

func (i *Item) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	i.Attrs = copyAttrs(start.Attr)
	return decodeChildren(d, func(el xml.StartElement) error {
		if el.Name.Space != "" {
			return decodeExtra(d, el, &i.Extra)
		}

		switch el.Name.Local {
		case "title":
			return d.DecodeElement(&i.Title, &el)
		case "link":
			return d.DecodeElement(&i.Link, &el)
		case "description":
			return d.DecodeElement(&i.Description, &el)
		case "pubDate":
			return d.DecodeElement(&i.PubDate, &el)
		case "guid":
			var guid GUID
			if err := d.DecodeElement(&guid, &el); err != nil {
				return err
			}
			i.GUID = &guid
			return nil
		default:
			return decodeExtra(d, el, &i.Extra)
		}
	})
}

func decodeChildren(d *xml.Decoder, child func(xml.StartElement) error) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := child(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func decodeExtra(d *xml.Decoder, el xml.StartElement, extra *[]Element) error {
	var e Element
	if err := d.DecodeElement(&e, &el); err != nil {
		return err
	}
	*extra = append(*extra, e)
	return nil
}

func copyAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	return append([]xml.Attr(nil), attrs...)
}

func (c *Channel) qualify(parent prefixScope) {
	scope := parent.with(c.Attrs)
	c.Attrs = scope.attrs(c.Attrs)
	qualifyExtra(scope, c.Extra)

	for i := range c.Items {
		item := &c.Items[i]
		itemScope := scope.with(item.Attrs)
		item.Attrs = itemScope.attrs(item.Attrs)
		qualifyExtra(itemScope, item.Extra)
	}
}

func qualifyExtra(parent prefixScope, extra []Element) {
	for i := range extra {
		el := &extra[i]
		scope := parent.with(el.Attrs)
		el.XMLName = scope.name(el.XMLName)
		el.Attrs = scope.attrs(el.Attrs)
	}
}

// prefixScope maps a namespace URL to the prefix bound to it, "" for the
// default namespace.
type prefixScope map[string]string

// with returns a copy of s extended by the declarations found in attrs
func (s prefixScope) with(attrs []xml.Attr) prefixScope {
	out := make(prefixScope, len(s))
	for url, prefix := range s {
		out[url] = prefix
	}

	for _, attr := range attrs {
		switch {
		case attr.Name.Space == "xmlns":
			out.bind(attr.Value, attr.Name.Local)
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			out.bind(attr.Value, "")
		}
	}
	return out
}

func (s prefixScope) bind(url, prefix string) {
	for u, p := range s {
		if p == prefix {
			delete(s, u)
		}
	}
	if url != "" {
		s[url] = prefix
	}
}

// name turns a resolved name back into its prefixed form. A Space the
// decoder could not resolve is the literal prefix and is kept as written.
func (s prefixScope) name(n xml.Name) xml.Name {
	if n.Space == "" {
		return n
	}

	prefix, ok := s[n.Space]
	switch {
	case n.Space == "xmlns":
		prefix = "xmlns"
	case n.Space == xmlNamespace:
		prefix = "xml"
	case !ok:
		prefix = n.Space
	}

	if prefix == "" {
		return xml.Name{Local: n.Local}
	}
	return xml.Name{Local: prefix + ":" + n.Local}
}

func (s prefixScope) attrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}

	out := make([]xml.Attr, len(attrs))
	for i, attr := range attrs {
		out[i] = xml.Attr{Name: s.name(attr.Name), Value: attr.Value}
	}
	return out
}
