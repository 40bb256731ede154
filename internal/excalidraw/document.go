// Package excalidraw assembles laid-out graphs into Excalidraw scene
// documents.
package excalidraw

// Element types emitted by the assembler.
const (
	TypeRectangle = "rectangle"
	TypeDiamond   = "diamond"
	TypeEllipse   = "ellipse"
	TypeText      = "text"
	TypeArrow     = "arrow"
)

// Document is the top-level .excalidraw file.
type Document struct {
	Type     string         `json:"type"`
	Version  int            `json:"version"`
	Source   string         `json:"source"`
	Elements []*Element     `json:"elements"`
	AppState AppState       `json:"appState"`
	Files    map[string]any `json:"files"`
}

// Element is one scene element. Shape, text and arrow specific fields are
// omitted when empty.
type Element struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	X               float64        `json:"x"`
	Y               float64        `json:"y"`
	Width           float64        `json:"width"`
	Height          float64        `json:"height"`
	Angle           float64        `json:"angle"`
	StrokeColor     string         `json:"strokeColor"`
	BackgroundColor string         `json:"backgroundColor"`
	FillStyle       string         `json:"fillStyle"`
	StrokeWidth     int            `json:"strokeWidth"`
	StrokeStyle     string         `json:"strokeStyle"`
	Roughness       int            `json:"roughness"`
	Opacity         int            `json:"opacity"`
	GroupIDs        []string       `json:"groupIds"`
	FrameID         *string        `json:"frameId"`
	Roundness       *Roundness     `json:"roundness"`
	Seed            int64          `json:"seed"`
	Version         int            `json:"version"`
	VersionNonce    int64          `json:"versionNonce"`
	IsDeleted       bool           `json:"isDeleted"`
	BoundElements   []BoundElement `json:"boundElements"`
	Updated         int64          `json:"updated"`
	Link            *string        `json:"link"`
	Locked          bool           `json:"locked"`
	CustomData      *CustomData    `json:"customData,omitempty"`

	// Text
	Text          string  `json:"text,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	FontFamily    int     `json:"fontFamily,omitempty"`
	TextAlign     string  `json:"textAlign,omitempty"`
	VerticalAlign string  `json:"verticalAlign,omitempty"`
	ContainerID   *string `json:"containerId,omitempty"`
	OriginalText  string  `json:"originalText,omitempty"`
	LineHeight    float64 `json:"lineHeight,omitempty"`

	// Arrow
	Points         [][2]float64 `json:"points,omitempty"`
	StartBinding   *Binding     `json:"startBinding,omitempty"`
	EndBinding     *Binding     `json:"endBinding,omitempty"`
	StartArrowhead *string      `json:"startArrowhead,omitempty"`
	EndArrowhead   *string      `json:"endArrowhead,omitempty"`
}

// Roundness marks rounded corners; type 3 is adaptive.
type Roundness struct {
	Type int `json:"type"`
}

// Binding attaches an arrow end to a shape.
type Binding struct {
	ElementID string  `json:"elementId"`
	Focus     float64 `json:"focus"`
	Gap       float64 `json:"gap"`
}

// BoundElement is a back-reference from a container to its text or
// arrows.
type BoundElement struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// CustomData carries graph metadata on shapes and arrows.
type CustomData struct {
	NodeID       string `json:"nodeId,omitempty"`
	EdgeID       string `json:"edgeId,omitempty"`
	InferredType string `json:"inferredType,omitempty"`
	Layer        string `json:"layer,omitempty"`
	Role         string `json:"role,omitempty"`
}

// AppState holds editor defaults.
type AppState struct {
	GridSize                   *int    `json:"gridSize"`
	ViewBackgroundColor        string  `json:"viewBackgroundColor"`
	CurrentItemStrokeColor     string  `json:"currentItemStrokeColor"`
	CurrentItemBackgroundColor string  `json:"currentItemBackgroundColor"`
	CurrentItemFillStyle       string  `json:"currentItemFillStyle"`
	CurrentItemStrokeWidth     int     `json:"currentItemStrokeWidth"`
	CurrentItemStrokeStyle     string  `json:"currentItemStrokeStyle"`
	CurrentItemRoughness       int     `json:"currentItemRoughness"`
	CurrentItemOpacity         int     `json:"currentItemOpacity"`
	CurrentItemFontFamily      int     `json:"currentItemFontFamily"`
	CurrentItemFontSize        int     `json:"currentItemFontSize"`
	CurrentItemTextAlign       string  `json:"currentItemTextAlign"`
	CurrentItemStartArrowhead  *string `json:"currentItemStartArrowhead"`
	CurrentItemEndArrowhead    string  `json:"currentItemEndArrowhead"`
	ScrollX                    float64 `json:"scrollX"`
	ScrollY                    float64 `json:"scrollY"`
	Zoom                       Zoom    `json:"zoom"`
}

// Zoom is the editor zoom level.
type Zoom struct {
	Value float64 `json:"value"`
}

// Element looks up an element by id.
func (d *Document) Element(id string) (*Element, bool) {
	for _, e := range d.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Count returns the number of elements of each type.
func (d *Document) Count() map[string]int {
	counts := make(map[string]int)
	for _, e := range d.Elements {
		counts[e.Type]++
	}
	return counts
}
