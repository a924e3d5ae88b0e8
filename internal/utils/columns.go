package utils

import "reflect"

const columnTag = "db"

// Columns lists the db column names of the row type T in field order.
// Fields without a db tag, or tagged "-", are not columns.
func Columns[T any]() []string {
	var columns []string
	eachColumn(reflect.TypeFor[T](), func(_ int, column string) {
		columns = append(columns, column)
	})
	return columns
}

// Values maps every db column of row to the field's value, ready for an
// insert or update SetMap. row may be a struct or a pointer to one.
func Values(row any) map[string]any {
	v := reflect.Indirect(reflect.ValueOf(row))
	values := make(map[string]any)
	if !v.IsValid() {
		return values
	}

	eachColumn(v.Type(), func(i int, column string) {
		values[column] = v.Field(i).Interface()
	})
	return values
}

func eachColumn(t reflect.Type, fn func(i int, column string)) {
	if t.Kind() != reflect.Struct {
		return
	}

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if column := field.Tag.Get(columnTag); column != "" && column != "-" {
			fn(i, column)
		}
	}
}
