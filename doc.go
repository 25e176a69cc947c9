// Package drawing is a GPU scene graph for molecular graphics.
//
// # Overview
//
// A scene is a tree of [Node] values. Each node may own one triangle mesh
// (vertices, normals, triangles) and is placed any number of times by its
// positions: a list of affine transforms in the parent's coordinate space.
// Drawing a node draws its mesh once per displayed position, then draws its
// children under each of those positions. A protein with ten thousand atoms
// is a single sphere mesh with ten thousand positions.
//
// # Quick Start
//
//	root := drawing.NewNode("scene")
//	atoms := root.NewChild("atoms")
//	if err := atoms.SetGeometry(vertices, triangles, normals); err != nil {
//	    return err
//	}
//	atoms.SetPositions(geom.NewShiftScalePlaces(centers))
//
//	r := drawing.NewSceneRenderer(dev)
//	defer r.Release()
//	err := r.DrawScene(enc, view, []*drawing.Node{root})
//
// # Instancing
//
// Positions come in two forms. General positions are full affine
// transforms uploaded as per-instance 4x4 matrices. Shift-and-scale
// positions differ only by translation and isotropic scale and are uploaded
// as four floats each; they are used for large sphere counts. A node with a
// single identity position draws without any instance array, and a single
// non-identity position is folded into the model matrix.
//
// # Selection
//
// Each position can be selected, and individual triangles can be selected
// for sub-object highlights. [Node.PromoteSelection] widens a partial
// selection to whole subtrees and [Node.DemoteSelection] restores the exact
// previous masks.
//
// # Rendering
//
// [SceneRenderer] draws a frame in fixed passes: opaque geometry, then a
// depth pre-pass and a blended pass for transparent geometry, then a
// separate selection pass for outlines. Every GPU call goes through the
// [gpu.Device] and [gpu.Encoder] interfaces; the gpu/record package
// provides a recording device for headless use and tests, and gpu/halgpu
// drives a real adapter.
//
// # Picking
//
// [FirstIntercept] and [Node.FirstIntercept] find the closest triangle hit
// by a line segment, reporting the fraction along the segment, the node, the
// instance and the triangle.
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to install a
// *slog.Logger.
package drawing
