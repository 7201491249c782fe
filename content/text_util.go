package content

import "fmt"

func toText(v any) string {
	return fmt.Sprintf("%v", v)
}
