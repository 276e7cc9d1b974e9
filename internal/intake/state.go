package intake

// VisualState is what the dropzone border should show.
type VisualState int

const (
	Idle VisualState = iota
	Active
	AllImages
	MixedOrNonImage
)

func (s VisualState) String() string {
	switch s {
	case Active:
		return "active"
	case AllImages:
		return "all-images"
	case MixedOrNonImage:
		return "mixed"
	default:
		return "idle"
	}
}

// SelectedFile is one member of the active batch. Thumbnail is a data URI for
// images and empty for everything else.
type SelectedFile struct {
	Source    Source
	MimeType  string
	Name      string
	Thumbnail string
}

// IsImage reports whether the file's MIME type starts with "image/".
func (f SelectedFile) IsImage() bool {
	return isImage(f.MimeType)
}

func batchState(files []SelectedFile) VisualState {
	for _, f := range files {
		if !f.IsImage() {
			return MixedOrNonImage
		}
	}
	return AllImages
}

// Region is the on-screen rectangle occupied by the dropzone, in cells.
type Region struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether the point lies inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}
