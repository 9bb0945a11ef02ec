package document

import "encoding/xml"

type xmlCollada struct {
	XMLName     xml.Name        `xml:"COLLADA"`
	Version     string          `xml:"version,attr"`
	Geometries  []xmlGeometry   `xml:"library_geometries>geometry"`
	Controllers []xmlController `xml:"library_controllers>controller"`
}

type xmlArray struct {
	ID    string `xml:"id,attr"`
	Count *int   `xml:"count,attr"`
	Body  string `xml:",chardata"`
}

type xmlParam struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type xmlAccessor struct {
	Source string     `xml:"source,attr"`
	Count  int        `xml:"count,attr"`
	Offset int        `xml:"offset,attr"`
	Stride int        `xml:"stride,attr"`
	Params []xmlParam `xml:"param"`
}

type xmlSource struct {
	ID         string       `xml:"id,attr"`
	Name       string       `xml:"name,attr"`
	FloatArray *xmlArray    `xml:"float_array"`
	IntArray   *xmlArray    `xml:"int_array"`
	BoolArray  *xmlArray    `xml:"bool_array"`
	NameArray  *xmlArray    `xml:"Name_array"`
	IDRefArray *xmlArray    `xml:"IDREF_array"`
	Accessor   *xmlAccessor `xml:"technique_common>accessor"`
}

type xmlInput struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   int    `xml:"offset,attr"`
	Set      int    `xml:"set,attr"`
}

type xmlVertices struct {
	ID     string     `xml:"id,attr"`
	Inputs []xmlInput `xml:"input"`
}

// xmlPrimitive covers every primitive element, XMLName tells them apart.
// first and end are not part of COLLADA but some exporters write them.
type xmlPrimitive struct {
	XMLName  xml.Name
	Count    *int       `xml:"count,attr"`
	First    *int       `xml:"first,attr"`
	End      *int       `xml:"end,attr"`
	Material string     `xml:"material,attr"`
	Inputs   []xmlInput `xml:"input"`
	VCount   string     `xml:"vcount"`
	P        []string   `xml:"p"`
}

type xmlMesh struct {
	Sources    []xmlSource    `xml:"source"`
	Vertices   xmlVertices    `xml:"vertices"`
	Primitives []xmlPrimitive `xml:",any"`
}

type xmlGeometry struct {
	ID   string   `xml:"id,attr"`
	Name string   `xml:"name,attr"`
	Mesh *xmlMesh `xml:"mesh"`
}

type xmlVertexWeights struct {
	Count  int        `xml:"count,attr"`
	Inputs []xmlInput `xml:"input"`
	VCount string     `xml:"vcount"`
	V      string     `xml:"v"`
}

type xmlSkin struct {
	Source    string           `xml:"source,attr"`
	BindShape *string          `xml:"bind_shape_matrix"`
	Sources   []xmlSource      `xml:"source"`
	Joints    []xmlInput       `xml:"joints>input"`
	Weights   xmlVertexWeights `xml:"vertex_weights"`
}

type xmlController struct {
	ID   string   `xml:"id,attr"`
	Name string   `xml:"name,attr"`
	Skin *xmlSkin `xml:"skin"`
}
