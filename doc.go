// Package fat32 defines the contracts shared by every concrete piece of
// this single-volume, FAT-style filesystem engine: the BlockDevice a
// volume is built on, and the Directory/DirectoryEntry shapes a caller
// walks without needing to know about clusters or the FAT.
package fat32
