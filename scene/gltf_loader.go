package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"pbr-engine/core"
	"pbr-engine/math"
)

// GLTFResult holds the drawable objects and textures loaded from a
// .glb / .gltf file. Before the first commit, upload every texture in the
// Textures slice:
//
//	for _, tex := range result.Textures {
//	    opengl.UploadTexture(tex)
//	}
type GLTFResult struct {
	Objects  []*Object  // one per mesh primitive, transforms flattened to world space
	Textures []*Texture // textures that need GPU upload
}

// LoadGLTF opens a .glb or .gltf file and returns ready-to-submit objects.
// Every mesh primitive becomes one Object with a suggested PBR material
// built from the glTF metallic-roughness parameters; the node hierarchy is
// flattened into world-space transforms.
func LoadGLTF(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)
	result := &GLTFResult{}

	// ── 1. Textures ───────────────────────────────────────────────────────────
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		img := doc.Images[*gt.Source]

		var tex *Texture
		if img.BufferView != nil {
			// Binary GLB: image data lives in a buffer view
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				fmt.Printf("gltf: image %d bufferview: %v\n", *gt.Source, err)
				continue
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("gltf_img_%d", *gt.Source)
			}
			tex, err = decodeImageBytes(name, raw)
			if err != nil {
				fmt.Printf("gltf: image %d decode: %v\n", *gt.Source, err)
				continue
			}
		} else if img.URI != "" && !img.IsEmbeddedResource() {
			// External file referenced by relative URI
			tex, err = LoadTexture(filepath.Join(dir, img.URI))
			if err != nil {
				fmt.Printf("gltf: image %d (%s): %v\n", *gt.Source, img.URI, err)
				continue
			}
		}

		if tex != nil {
			texCache[i] = tex
			result.Textures = append(result.Textures, tex)
		}
	}

	// ── 2. Materials ─────────────────────────────────────────────────────────
	matCache := make([]Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := NewPBRMaterial()

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.PBR.Albedo = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: float32(cf[3]),
			}
			mat.PBR.Metallic = float32(pbr.MetallicFactorOrDefault())
			mat.PBR.Roughness = float32(pbr.RoughnessFactorOrDefault())
			if pbr.BaseColorTexture != nil {
				idx := pbr.BaseColorTexture.Index
				if idx < len(texCache) && texCache[idx] != nil {
					mat.PBR.AlbedoTexture = texCache[idx]
				}
			}
		}
		matCache[i] = mat
	}

	// ── 3. Mesh primitives ────────────────────────────────────────────────────
	type prim struct {
		mesh *Mesh
		mat  Material
	}
	meshPrims := make([][]prim, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, gp := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, *gp)
			if err != nil {
				fmt.Printf("gltf: mesh %d prim %d: %v\n", mi, pi, err)
				continue
			}
			mat := NewPBRMaterial()
			if gp.Material != nil && *gp.Material < len(matCache) {
				mat = matCache[*gp.Material]
			}
			meshPrims[mi] = append(meshPrims[mi], prim{mesh: m, mat: mat})
		}
	}

	// ── 4. Flatten node hierarchy to world transforms ─────────────────────────
	worlds := make([]math.Mat4, len(doc.Nodes))
	resolved := make([]bool, len(doc.Nodes))

	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(parents) {
				parents[c] = i
			}
		}
	}

	var worldOf func(i int) math.Mat4
	worldOf = func(i int) math.Mat4 {
		if resolved[i] {
			return worlds[i]
		}
		local := gltfLocalMatrix(doc.Nodes[i])
		if p := parents[i]; p >= 0 {
			local = local.Mul(worldOf(p))
		}
		worlds[i] = local
		resolved[i] = true
		return local
	}

	for i, gn := range doc.Nodes {
		if gn.Mesh == nil || *gn.Mesh >= len(meshPrims) {
			continue
		}
		world := worldOf(i)
		for _, p := range meshPrims[*gn.Mesh] {
			obj := NewObject(p.mesh, p.mat)
			obj.SetTransform(world)
			result.Objects = append(result.Objects, obj)
		}
	}

	return result, nil
}

// gltfLocalMatrix builds a node's local transform from its TRS properties.
func gltfLocalMatrix(gn *gltf.Node) math.Mat4 {
	t := gn.TranslationOrDefault()
	sc := gn.ScaleOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]

	scale := math.Mat4Scale(math.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])})
	rot := quatToMat4(float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3]))
	trans := math.Mat4Translation(math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])})

	return scale.Mul(rot).Mul(trans)
}

// quatToMat4 converts a unit quaternion (x, y, z, w) into a rotation matrix.
func quatToMat4(x, y, z, w float32) math.Mat4 {
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return math.Mat4{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0},
		{0, 0, 0, 1},
	}
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	// Positions are required
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return NewMesh(name, verts, indices), nil
}

// decodeImageBytes decodes an image byte slice into an RGBA8 scene.Texture.
func decodeImageBytes(name string, data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return &Texture{
		Name:   name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}, nil
}
