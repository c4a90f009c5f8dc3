package extension

// SVGNamespace is the namespace URI of SVG elements.
const SVGNamespace = "http://www.w3.org/2000/svg"

// SVGExtension maps <svg> (and its alias "icon") to the SVG namespace.
func SVGExtension() *Descriptor {
	return &Descriptor{
		Meta: Meta{
			Key:         "svg",
			Name:        "SVG",
			Version:     "1.0.0",
			Description: "SVG namespace and icon alias",
		},
		Capabilities: Capabilities{
			RendererProps: &RendererProps{
				Namespaces:      map[string]string{"svg": SVGNamespace},
				TagNamespaceMap: map[string]string{"svg": "svg"},
				TagAliases:      map[string]string{"icon": "svg"},
			},
		},
	}
}
