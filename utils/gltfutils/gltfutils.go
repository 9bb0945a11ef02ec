package gltfutils

import (
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// AddRootNodes puts every node not referenced as a child into the first scene.
func AddRootNodes(doc *gltf.Document) {
	if len(doc.Scenes) == 0 {
		doc.Scenes = append(doc.Scenes, &gltf.Scene{Name: "Root Scene"})
		doc.Scene = gltf.Index(0)
	}
	children := make(map[uint32]bool)
	for _, node := range doc.Nodes {
		for _, child := range node.Children {
			children[child] = true
		}
	}
	scene := doc.Scenes[0]
	scene.Nodes = scene.Nodes[:0]
	for iNode := range doc.Nodes {
		if !children[uint32(iNode)] {
			scene.Nodes = append(scene.Nodes, uint32(iNode))
		}
	}
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	AddRootNodes(doc)

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return errors.Wrap(encoder.Encode(doc), "Failed to encode glb")
}

// Save writes doc as .gltf or .glb depending on the file extension.
func Save(doc *gltf.Document, path string) error {
	AddRootNodes(doc)

	var err error
	if len(path) > 4 && path[len(path)-4:] == ".glb" {
		err = gltf.SaveBinary(doc, path)
	} else {
		err = gltf.Save(doc, path)
	}
	return errors.Wrapf(err, "Failed to save %q", path)
}
