package videogenerator

var resolution1080p = ScreenResolution{1920, 1080}
var resolution720p = ScreenResolution{1280, 720}
var resolution480p = ScreenResolution{854, 480}

var defaultResolution = resolution1080p

// Resolutions are the named export sizes.
var Resolutions = map[string]ScreenResolution{
	"1080p": resolution1080p,
	"720p":  resolution720p,
	"480p":  resolution480p,
}

const framePattern = "fr%05d.png"

// Frames are logged every progressSeconds of video.
const progressSeconds = 30

const (
	recordingName = "piano-visualization"
	maxWorkers    = 50
)
