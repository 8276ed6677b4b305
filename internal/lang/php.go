package lang

import (
	"github.com/smacker/go-tree-sitter/php"
)

// PHP is the name under which the PHP grammar is registered.
const PHP = "php"

func init() {
	Languages[PHP] = &Language{
		Name: PHP,
		lang: php.GetLanguage(),
	}
}

// ClassmapExtensions lists the extensions Composer's classmap scanner picks
// up when walking a directory.
var ClassmapExtensions = []string{".php", ".inc"}

// PSRExtensions lists the extensions a PSR-0/PSR-4 directory can autoload.
var PSRExtensions = []string{".php"}
