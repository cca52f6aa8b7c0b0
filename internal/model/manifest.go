package model

import "fmt"

// DefaultRepo is the Hugging Face repository the speech model ships from.
const DefaultRepo = "KittenML/kitten-tts-nano-0.1"

type Manifest struct {
	Repo  string      `json:"repo"`
	Files []ModelFile `json:"files"`
}

type ModelFile struct {
	Filename string `json:"filename"`
	Revision string `json:"revision"`
	SHA256   string `json:"sha256"`
}

func PinnedManifest(repo string) (Manifest, error) {
	switch repo {
	case DefaultRepo:
		// Upstream publishes on the main ref without release tags, so
		// checksums are resolved from HF metadata on first download and
		// then persisted into the local lock manifest.
		return Manifest{
			Repo: repo,
			Files: []ModelFile{
				{Filename: ModelFilename, Revision: "main", SHA256: ""},
				{Filename: VoicesFilename, Revision: "main", SHA256: ""},
				{Filename: ConfigFilename, Revision: "main", SHA256: ""},
			},
		}, nil
	default:
		return Manifest{}, fmt.Errorf("no pinned manifest for repo %q", repo)
	}
}
