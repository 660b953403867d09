package mysql

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	. "github.com/onsi/gomega"

	"github.com/bgunnarsson/sqltab/internal/config"
)

func TestDSN(t *testing.T) {
	g := NewWithT(t)

	dsn, err := DSN(config.Connection{
		Server: "db.internal", Database: "hr", User: "reader", Password: "s3cret", Timeout: 2 * time.Second,
	})
	g.Expect(err).ToNot(HaveOccurred())

	mc, err := mysql.ParseDSN(dsn)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(mc.User).To(Equal("reader"))
	g.Expect(mc.Passwd).To(Equal("s3cret"))
	g.Expect(mc.Net).To(Equal("tcp"))
	g.Expect(mc.Addr).To(Equal("db.internal:3306"))
	g.Expect(mc.DBName).To(Equal("hr"))
	g.Expect(mc.ParseTime).To(BeTrue())
	g.Expect(mc.Timeout).To(Equal(2 * time.Second))

	dsn, err = DSN(config.Connection{DSN: "root@unix(/tmp/mysql.sock)/hr"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(dsn).To(Equal("root@unix(/tmp/mysql.sock)/hr"))
}

func TestDiagnose(t *testing.T) {
	g := NewWithT(t)

	myErr := &mysql.MySQLError{Number: 1146, SQLState: [5]byte{'4', '2', 'S', '0', '2'}, Message: "Table 'hr.Empleados' doesn't exist"}
	state, msg, ok := Diagnose(fmt.Errorf("query: %w", myErr))
	g.Expect(ok).To(BeTrue())
	g.Expect(state).To(Equal("42S02"))
	g.Expect(msg).To(Equal("Table 'hr.Empleados' doesn't exist"))

	state, _, ok = Diagnose(&mysql.MySQLError{Number: 1045, Message: "Access denied"})
	g.Expect(ok).To(BeTrue())
	g.Expect(state).To(Equal("1045"))

	_, _, ok = Diagnose(errors.New("i/o timeout"))
	g.Expect(ok).To(BeFalse())
}

func TestFormatValue(t *testing.T) {
	g := NewWithT(t)

	s, err := formatValue([]byte("Sistemas"), "varchar")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(s).To(Equal("Sistemas"))

	s, err = formatValue([]byte{0x01}, "bit")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(s).To(Equal("0x01"))
}
