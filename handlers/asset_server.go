package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AssetServer serves stored person files from baseStoragePath. routePrefix is the public
// URL prefix the handler is mounted under, e.g.
//
//	r.Get(cfg.PublicURLPrefix+"/*", AssetServer(cfg.UploadsPath, cfg.PublicURLPrefix))
//
// so /storage/uploads/1-Jane_Doe/CertificationImages/x.pdf maps to
// {baseStoragePath}/1-Jane_Doe/CertificationImages/x.pdf.
func AssetServer(baseStoragePath, routePrefix string) http.HandlerFunc {
	base := filepath.Clean(baseStoragePath)
	routePrefix = strings.TrimSuffix(routePrefix, "/") + "/"
	log.Printf("Serving stored files for '%s*' from directory: %s", routePrefix, base)

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := strings.TrimPrefix(r.URL.Path, routePrefix)

		if relativePath == "" || relativePath == r.URL.Path || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid asset path", http.StatusBadRequest)
			return
		}

		cleanedAssetPath := filepath.Clean(filepath.Join(base, filepath.FromSlash(relativePath)))
		if !strings.HasPrefix(cleanedAssetPath, base+string(filepath.Separator)) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			log.Printf("SECURITY: Attempted asset access outside designated directory: Request='%s', Resolved='%s', Allowed Base='%s'",
				r.URL.Path, cleanedAssetPath, base)
			return
		}

		info, err := os.Stat(cleanedAssetPath)
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			log.Printf("Error stating asset file %s: %v", cleanedAssetPath, err)
			return
		}
		// directories are never listed
		if info.IsDir() {
			http.NotFound(w, r)
			return
		}

		cacheDuration := 24 * time.Hour
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))

		http.ServeFile(w, r, cleanedAssetPath)
	}
}
