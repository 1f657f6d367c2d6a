// media/types.go
package media

import "path"

// sub-directories created under every person folder
const (
	SubDirProfilePhotos       = "ProfilePhotos"
	SubDirCertificationImages = "CertificationImages"
	SubDirDocs                = "Docs"
)

// PersonSubDirs lists the folder tree created for each person, in creation order.
var PersonSubDirs = []string{SubDirProfilePhotos, SubDirCertificationImages, SubDirDocs}

// CertificationDir is the relative directory holding a person's certification files.
func CertificationDir(folderName string) string {
	return path.Join(folderName, SubDirCertificationImages)
}

// CertificationPath is the relative path of one stored certification file.
func CertificationPath(folderName, fileName string) string {
	return path.Join(folderName, SubDirCertificationImages, fileName)
}
