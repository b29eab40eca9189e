package docstore

// ドキュメントストアのワイヤフォーマットは型付きフィールドを要求する。
// 各値は {"stringValue": …} のような型タグ付きオブジェクトで表現される。

// stringField は文字列値の型付きフィールド。
type stringField struct {
	StringValue string `json:"stringValue"`
}

// timestampField はタイムスタンプ値の型付きフィールド（RFC3339文字列）。
type timestampField struct {
	TimestampValue string `json:"timestampValue"`
}

// arrayField は文字列配列の型付きフィールド。
// 空配列の場合も "values": [] を必ず送信する。
type arrayField struct {
	ArrayValue arrayValue `json:"arrayValue"`
}

type arrayValue struct {
	Values []stringField `json:"values"`
}

// newArrayField は文字列スライスをarrayFieldへ変換する。
// nilスライスも空の values: [] として送信されるようにする。
func newArrayField(items []string) arrayField {
	values := make([]stringField, 0, len(items))
	for _, item := range items {
		values = append(values, stringField{StringValue: item})
	}
	return arrayField{ArrayValue: arrayValue{Values: values}}
}

// profileDocument はプロファイルUPSERTのリクエストボディ。
type profileDocument struct {
	Fields profileFields `json:"fields"`
}

type profileFields struct {
	Email      stringField    `json:"email"`
	CreatedAt  timestampField `json:"createdAt"`
	UserID     stringField    `json:"userID"`
	Bookmarks  arrayField     `json:"bookmarks"`
	SharedWith arrayField     `json:"sharedWith"`
}

// listResponse はブックマークコレクション取得のレスポンス。
// コレクションが空の場合、documentsキー自体が存在しないことがある。
type listResponse struct {
	Documents []bookmarkDocument `json:"documents"`
}

// bookmarkDocument は1件のブックマークドキュメント。
// fieldsやその中の個々のフィールドは欠落し得る。
type bookmarkDocument struct {
	Fields map[string]stringField `json:"fields"`
}
