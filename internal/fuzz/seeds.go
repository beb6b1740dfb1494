package fuzztests

import (
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
	maxFuzzInput = 16 << 10
)

// phpSeeds cover the constructs the checker looks at.
var phpSeeds = []string{
	"",
	"<?php\n",
	"<?php\nclass A extends B {}\n",
	"<?php\nnamespace app;\n\nuse lib\\Other;\nuse lib\\Base;\n\nclass User extends Base\n{\n}\n",
	"<?php\nnamespace a;\nuse lib\\{One, Two as Deux};\nclass X implements Deux { use One; }\n",
	"<?php\nnamespace a;\nuse A, B;\n",
	"<?php\nnamespace a {\n  use x\\Y;\n  function f(Y $y): \\z\\R { return new Y(); }\n}\nnamespace b {\n}\n",
	"<?php\nnamespace a;\n/**\n * @var Foo\n * @param $x Bar\n * @retrun Baz\n * @ORM\\Entity(repositoryClass=Repo::class)\n */\nclass C {}\n",
	"<?php\nnamespace a;\nclass D {\n  /** @var Address */\n  private ?Address $address = null;\n  public function m() { try {} catch (Oops $e) {} return Util::build() instanceof Other; }\n}\n",
	"<?php\nnamespace a;\nuse b\\C as D, b\\C as D;\nclass {\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range phpSeeds {
		f.Add(clampSeed([]byte(seed)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return src
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
