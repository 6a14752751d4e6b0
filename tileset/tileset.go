/*
Package tileset converts between retail tilesets, four slots of up to 256
tiles each stored in SARC archives, and lists of tile objects.
*/
package tileset

import (
	"fmt"

	"github.com/bodgit/onetileset/object"
	"github.com/bodgit/onetileset/tile"
)

const (
	// ArchivePadding is the payload alignment used for tileset archives
	ArchivePadding = 0x2000
	// MaxTiles is the number of tiles that fit in slots 1 to 3
	MaxTiles = 3 * object.SlotTiles
	// CollisionsSize is the size of the collision table of a slot
	CollisionsSize = object.SlotTiles * tile.CollisionSize

	// InfoPath holds the object names, it is optional
	InfoPath = "BG_unt/info.json"
)

// ImagePath returns the archive path of the tile images of a slot.
func ImagePath(slot int, name string) string {
	return fmt.Sprintf("BG_tex/Pa%d_%s.gtx", slot, name)
}

// NormalPath returns the archive path of the normal map of a slot.
func NormalPath(slot int, name string) string {
	return fmt.Sprintf("BG_tex/Pa%d_%s_nml.gtx", slot, name)
}

// CollisionsPath returns the archive path of the collision table of a slot.
func CollisionsPath(slot int, name string) string {
	return fmt.Sprintf("BG_chk/d_bgchk_Pa%d_%s.bin", slot, name)
}

// LayoutsPath returns the archive path of the object layouts of a slot.
func LayoutsPath(slot int, name string) string {
	return fmt.Sprintf("BG_unt/Pa%d_%s.bin", slot, name)
}

// IndexPath returns the archive path of the object index of a slot.
func IndexPath(slot int, name string) string {
	return fmt.Sprintf("BG_unt/Pa%d_%s_hd.bin", slot, name)
}
