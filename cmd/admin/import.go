package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"berdoz-admin/internal/client"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/workset"
)

// row 是任意结构的模块记录。只解析 id 和 version，
// 其余字段由服务端规范化和校验。
type row struct {
	models.Meta
	fields map[string]json.RawMessage
}

func (r *row) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &r.fields); err != nil {
		return err
	}
	if raw, ok := r.fields["id"]; ok {
		_ = json.Unmarshal(raw, &r.ID)
	}
	if raw, ok := r.fields["version"]; ok {
		_ = json.Unmarshal(raw, &r.Version)
	}
	return nil
}

func (r *row) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.fields)+2)
	for k, v := range r.fields {
		out[k] = v
	}
	if r.ID != "" {
		out["id"] = r.ID
	}
	out["version"] = r.Version
	return json.Marshal(out)
}

type importStats struct {
	created, updated, conflicts, failed int
}

func (cli *commandLine) importRows(ctx context.Context, server, user, pwd, resource, file string) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var rows []*row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	c := client.New(server)
	if err := c.Login(ctx, user, pwd); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	res := client.NewResource[*row](c, resource)
	if err := res.Load(ctx); err != nil {
		return fmt.Errorf("load %s: %w", resource, err)
	}

	var st importStats
	for i, r := range rows {
		if r == nil {
			continue
		}
		ref := workset.Persisted(r.ID)
		if r.ID == "" {
			ref = res.Add(r)
		}
		_, err := res.Save(ctx, ref, r)
		switch {
		case err == nil && ref.IsDraft():
			st.created++
		case err == nil:
			st.updated++
		case errors.Is(err, client.ErrConflict):
			st.conflicts++
			fmt.Fprintf(cli.out, "row %d (%s): changed on the server, skipped\n", i, r.ID)
		default:
			st.failed++
			fmt.Fprintf(cli.out, "row %d: %v\n", i, err)
		}
	}

	fmt.Fprintf(cli.out, "%s: %d created, %d updated, %d conflicts, %d failed (%d rows now)\n",
		resource, st.created, st.updated, st.conflicts, st.failed, res.Set().Len())
	if st.failed > 0 {
		return fmt.Errorf("%d rows failed", st.failed)
	}
	return nil
}
