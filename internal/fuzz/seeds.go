package fuzztests

import "testing"

const maxFuzzInput = 1 << 16 // 64 KiB

var seeds = []string{
	"",
	"const int x = 1;\n",
	"const int x = ;\n",
	"public const string s = \"Value\";\nconst t = s + \"!\";\n",
	"const a = b;\nconst b = a;\n",
	"const map<map<int>> nested = {foo: {a: 10, b: 100}};\n",
	"type Point record {| int x; int y; |};\nPoint p = {x: 1, y: 2};\n",
	"type A int|string;\ntype B A & readonly;\n",
	"# Doc\n# + n - count\npublic function f(int n) returns int {\n    return n * 2;\n}\n",
	"public const annotation record {| string id; |} tag on source const;\n@tag {id: \"one\"}\nconst int c = 1;\n",
	"import lib;\nconst int twice = lib:LIMIT * 2;\n",
	"function h = \"x\";\nisolated function g = h;\n",
	"const x = {a: 1, a: 2};\n",
}

// malformed inputs only seed the lexer and parser harnesses.
var malformed = []string{
	"const int x = 1 +;\n",
	"type T record {",
	"@",
	"\"unterminated",
	"0x",
}

func addSeeds(f *testing.F) {
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

func addMalformedSeeds(f *testing.F) {
	addSeeds(f)
	for _, s := range malformed {
		f.Add([]byte(s))
	}
}

func clamp(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
