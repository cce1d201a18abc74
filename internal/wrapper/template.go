package wrapper

// wrapperText is the wrapper.cpp skeleton. Section bodies are
// pre-rendered strings so the template itself stays trivial.
const wrapperText = `// Generated by vsmoke. Do not edit.

#include <cassert>
#include <cstdint>
#include "{{.Component}}.h"

static const char *CONFIG = "{{.Config}}";

struct Model
{
    const char *config = CONFIG;
    {{.Component}} impl;
};

extern "C" const char *model_config()
{
    return CONFIG;
}

extern "C" Model *model_create()
{
    return new Model();
}

extern "C" void model_destroy(Model *m)
{
    assert(m != nullptr && m->config == CONFIG);
    m->config = nullptr;
    delete m;
}

static void set_clocks(Model *m, int32_t value)
{
{{.SetClocks}}}

static void set_resets(Model *m, int32_t value)
{
{{.SetResets}}}

extern "C" void model_set_clocks(Model *m, int32_t value)
{
    assert(m != nullptr && m->config == CONFIG);
    set_clocks(m, value);
}

extern "C" void model_set_reset(Model *m, int32_t value)
{
    assert(m != nullptr && m->config == CONFIG);
    set_resets(m, value);
}

extern "C" void model_eval(Model *m)
{
    assert(m != nullptr && m->config == CONFIG);
    m->impl.eval();
}

extern "C" void model_final(Model *m)
{
    assert(m != nullptr && m->config == CONFIG);
    m->impl.final();
}

extern "C" void model_reset(Model *m)
{
    assert(m != nullptr && m->config == CONFIG);

    set_resets(m, 1);
{{.BusDisable}}
    for (int i = 0; i < 4; i++)
    {
        set_clocks(m, (i + 1) & 1);
        m->impl.eval();
    }

    set_resets(m, 0);
}

static void write_port(CData &port, const int32_t *&input)
{
    port = *(input++);
}

static void write_port(SData &port, const int32_t *&input)
{
    port = *(input++);
}

static void write_port(IData &port, const int32_t *&input)
{
    port = *(input++);
}

static void write_port(QData &port, const int32_t *&input)
{
    uint32_t data0 = *(input++);
    uint32_t data1 = *(input++);
    port = ((uint64_t)data1 << 32) | data0;
}

template <std::size_t N>
static void write_port(WData (&port)[N], const int32_t *&input)
{
    for (std::size_t i = 0; i < N; i++)
        port[i] = *(input++);
}

static void read_port(const CData &port, int32_t *&output)
{
    *(output++) = port;
}

static void read_port(const SData &port, int32_t *&output)
{
    *(output++) = port;
}

static void read_port(const IData &port, int32_t *&output)
{
    *(output++) = port;
}

static void read_port(const QData &port, int32_t *&output)
{
    *(output++) = (int32_t)(port & 0xffffffff);
    *(output++) = (int32_t)(port >> 32);
}

template <std::size_t N>
static void read_port(const WData (&port)[N], int32_t *&output)
{
    for (std::size_t i = 0; i < N; i++)
        *(output++) = port[i];
}

extern "C" void model_work(Model *m,
                           int64_t *input_sizes,
                           int64_t *output_sizes,
                           int32_t **input_items,
                           int32_t **output_items)
{
    assert(m != nullptr && m->config == CONFIG);

{{.LocalVars}}
    int idle = 0;
    while (idle < 10)
    {
        idle += 1;

{{.BusPrepare}}
        set_clocks(m, 0);
        m->impl.eval();
{{.BusTransfer}}
        set_clocks(m, 1);
        m->impl.eval();
    }

{{.WriteBack}}}

extern "C" uint64_t model_read_register(Model *m, uint32_t reg)
{
    assert(m != nullptr && m->config == CONFIG);
    uint64_t value = 0;

{{.ReadRegs}}    return value;
}
`
