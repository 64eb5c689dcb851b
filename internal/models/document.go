package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Document 由文档库中的每种记录实现
type Document interface {
	GetMeta() *Meta
}

// Normalizer 在写入前重算派生字段（合计、补齐的周）
type Normalizer interface {
	Normalize()
}

// Meta 是所有文档共有的标识和记账字段。
// Version 是乐观并发计数器，引入版本号之前写入的文档解码后 Version 为 0。
type Meta struct {
	ID        string    `json:"id" bson:"id"`
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (m *Meta) GetMeta() *Meta { return m }

// Number 是宽松的数值字段，接受 JSON 数字、数字字符串（可带千分位）、
// 空字符串和 null。无法解析的值按 0 处理，不让整个请求失败。
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		*n = ParseNumber(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// UnmarshalBSONValue 兼容把数字存成文本的旧文档
func (n *Number) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Double:
		*n = Number(rv.Double())
	case bsontype.Int32:
		*n = Number(rv.Int32())
	case bsontype.Int64:
		*n = Number(rv.Int64())
	case bsontype.String:
		*n = ParseNumber(rv.StringValue())
	default:
		*n = 0
	}
	return nil
}

func (n Number) Float() float64 { return float64(n) }

// Decimal 用于金额加减，避免 float64 累加误差
func (n Number) Decimal() decimal.Decimal {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// SumNumbers 用 decimal 求和
func SumNumbers(ns ...Number) decimal.Decimal {
	sum := decimal.Zero
	for _, n := range ns {
		sum = sum.Add(n.Decimal())
	}
	return sum
}

// NumberFromDecimal 把 decimal 结果存回 Number
func NumberFromDecimal(d decimal.Decimal) Number { return Number(d.InexactFloat64()) }

// Text 是字符串字段，旧记录有时把它存成数字（多半是年份）
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
		return nil
	}
	*t = Text(string(b))
	return nil
}

func (t *Text) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: typ, Value: data}
	switch typ {
	case bsontype.String:
		*t = Text(rv.StringValue())
	case bsontype.Int32:
		*t = Text(strconv.Itoa(int(rv.Int32())))
	case bsontype.Int64:
		*t = Text(strconv.FormatInt(rv.Int64(), 10))
	case bsontype.Double:
		*t = Text(strconv.FormatFloat(rv.Double(), 'f', -1, 64))
	default:
		*t = ""
	}
	return nil
}

func (t Text) String() string { return string(t) }

// ParseNumber 把自由格式的数字文本转成 Number，默认 0
func ParseNumber(s string) Number {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Number(f)
}

// Media 引用一个上传的文件
type Media struct {
	URL          string `json:"url" bson:"url"`
	OriginalName string `json:"originalName" bson:"originalName"`
	Size         int64  `json:"size" bson:"size"`
}

// Period 是大多数财务记录归档用的年、月
type Period struct {
	Year  string
	Month string
}

// Periodic 由按年月归档的记录实现
type Periodic interface {
	Period() Period
}

// Amounted 由计入金额合计的记录实现
type Amounted interface {
	Amount() float64
}
